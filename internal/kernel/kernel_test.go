package kernel

import (
	"testing"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
)

// wordInputs allocates a 32-bit input word starting at the given input
// wire offset, used to build small test circuits whose inputs are exactly
// the bits under test (no PC/register/memory layout involved).
func wordInputs(base int) []circuit.WireId {
	w := make([]circuit.WireId, 32)
	for i := range w {
		w[i] = circuit.WireId(base + i)
	}
	return w
}

func newTestBuilder(t *testing.T, numInputs int) *dedup.Builder {
	t.Helper()
	a, err := circuit.NewArena(numInputs, 32)
	if err != nil {
		t.Fatal(err)
	}
	return dedup.NewBuilder(a, true, true)
}

// evalCircuit extends the input assignment to every wire and fills in each
// gate output in append order.
func evalCircuit(b *dedup.Builder, assignment []bool) []bool {
	gates := b.Arena.Gates()
	for len(assignment) < int(b.Arena.NextWireID()) {
		assignment = append(assignment, false)
	}
	for _, g := range gates {
		var v bool
		switch g.Kind {
		case circuit.KindAND:
			v = assignment[g.Left] && assignment[g.Right]
		case circuit.KindXOR:
			v = assignment[g.Left] != assignment[g.Right]
		}
		assignment[g.Output] = v
	}
	return assignment
}

func wordToBits(v uint32) []bool {
	out := make([]bool, 32)
	for i := range out {
		out[i] = (v>>uint(i))&1 == 1
	}
	return out
}

func bitsToWord(assignment []bool, wires []circuit.WireId) uint32 {
	var v uint32
	for i, w := range wires {
		if assignment[w] {
			v |= 1 << uint(i)
		}
	}
	return v
}

func TestAdd32Addition(t *testing.T) {
	b := newTestBuilder(t, 66)
	a := wordInputs(2)
	y := wordInputs(34)
	sum, _ := Add32(b, a, y)

	full := make([]bool, 66)
	full[0], full[1] = false, true
	copy(full[2:34], wordToBits(5))
	copy(full[34:66], wordToBits(7))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, sum); got != 12 {
		t.Fatalf("5+7: got %d, want 12", got)
	}
}

func TestAdd32Wraparound(t *testing.T) {
	b := newTestBuilder(t, 66)
	a := wordInputs(2)
	y := wordInputs(34)
	sum, carryOut := Add32(b, a, y)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(0xFFFFFFFF))
	copy(full[34:66], wordToBits(1))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, sum); got != 0 {
		t.Fatalf("0xFFFFFFFF+1: got %#x, want 0", got)
	}
	if !result[carryOut] {
		t.Fatal("expected carry-out on wraparound")
	}
}

func TestSubtract32(t *testing.T) {
	b := newTestBuilder(t, 66)
	a := wordInputs(2)
	y := wordInputs(34)
	diff, _ := Subtract32(b, a, y)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(0))
	copy(full[34:66], wordToBits(1))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, diff); got != 0xFFFFFFFF {
		t.Fatalf("0-1: got %#x, want 0xFFFFFFFF", got)
	}
}

func TestEqualAndUnsignedLess(t *testing.T) {
	b := newTestBuilder(t, 66)
	a := wordInputs(2)
	y := wordInputs(34)
	eq := Equal(b, a, y)
	lt := UnsignedLess(b, a, y)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(3))
	copy(full[34:66], wordToBits(5))
	result := evalCircuit(b, full)

	if result[eq] {
		t.Fatal("3 should not equal 5")
	}
	if !result[lt] {
		t.Fatal("3 should be less than 5 (unsigned)")
	}
}

func TestShiftLeftLogical(t *testing.T) {
	b := newTestBuilder(t, 66)
	v := wordInputs(2)
	shamt := wordInputs(34)
	out := ShiftLeftLogical(b, v, shamt)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(1))
	copy(full[34:66], wordToBits(31))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, out); got != (1 << 31) {
		t.Fatalf("1<<31: got %#x, want %#x", got, uint32(1)<<31)
	}
}

func TestShiftRightArithmeticSignExtends(t *testing.T) {
	b := newTestBuilder(t, 66)
	v := wordInputs(2)
	shamt := wordInputs(34)
	out := ShiftRightArithmetic(b, v, shamt)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(0x80000000))
	copy(full[34:66], wordToBits(31))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, out); got != 0xFFFFFFFF {
		t.Fatalf("0x80000000>>>31: got %#x, want 0xFFFFFFFF", got)
	}
}

func TestMulLowBits(t *testing.T) {
	b := newTestBuilder(t, 66)
	a := wordInputs(2)
	y := wordInputs(34)
	out := Mul(b, a, y)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(6))
	copy(full[34:66], wordToBits(7))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, out); got != 42 {
		t.Fatalf("6*7: got %d, want 42", got)
	}
}

func TestDivuByZero(t *testing.T) {
	b := newTestBuilder(t, 66)
	a := wordInputs(2)
	y := wordInputs(34)
	out := Divu(b, a, y)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(42))
	copy(full[34:66], wordToBits(0))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, out); got != 0xFFFFFFFF {
		t.Fatalf("42/0: got %#x, want 0xFFFFFFFF", got)
	}
}

func TestDivSignedOverflowFixpoint(t *testing.T) {
	b := newTestBuilder(t, 66)
	a := wordInputs(2)
	y := wordInputs(34)
	out := Div(b, a, y)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(0x80000000))
	copy(full[34:66], wordToBits(0xFFFFFFFF))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, out); got != 0x80000000 {
		t.Fatalf("INT_MIN/-1: got %#x, want 0x80000000", got)
	}
}

func TestDivuBasic(t *testing.T) {
	b := newTestBuilder(t, 66)
	a := wordInputs(2)
	y := wordInputs(34)
	out := Divu(b, a, y)

	full := make([]bool, 66)
	full[1] = true
	copy(full[2:34], wordToBits(20))
	copy(full[34:66], wordToBits(3))
	result := evalCircuit(b, full)

	if got := bitsToWord(result, out); got != 6 {
		t.Fatalf("20/3: got %d, want 6", got)
	}
}
