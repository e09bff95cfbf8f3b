package lower

import (
	"math/rand"
	"testing"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/memtier"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/rvref"
)

// TestLowererMatchesReferenceInterpreter runs the same small program
// through the gate-level Lowerer and through rvref's host interpreter,
// and checks every register and the final PC agree -- the differential
// check the Parallel Driver and the fusion peephole both have to remain
// transparent to.
func TestLowererMatchesReferenceInterpreter(t *testing.T) {
	program := []uint32{
		encodeI(10, 0, 0x0, 1, opImm),                // ADDI x1, x0, 10
		encodeI(0xFFFFFFFF&0xFFF, 0, 0x0, 2, opImm), // ADDI x2, x0, -1
		encodeR(0x00, 2, 1, 0x0, 3, opReg),           // ADD x3, x1, x2
		encodeR(0x20, 2, 1, 0x0, 4, opReg),           // SUB x4, x1, x2
		encodeR(0x00, 1, 2, 0x4, 5, opReg),           // XOR x5, x2, x1
	}

	b, pc, regs := newFullStateBuilder(t)
	l := NewLowerer(b, memtier.NewUltra(nil), pc, regs)
	l.Run(program)

	full := baseAssignment(circuit.FixedOverheadBits)
	result := evalCircuit(b, full)

	ref := rvref.NewCPU(0)
	ref.LoadProgram(program, 0)
	ref.Run()

	for r := 1; r <= 5; r++ {
		got := bitsToWord(result, l.Regs[r])
		want := ref.Regs[r]
		if got != want {
			t.Fatalf("x%d: circuit=%#x reference=%#x", r, got, want)
		}
	}
	if gotPC, wantPC := bitsToWord(result, l.PC), ref.PC; gotPC != wantPC {
		t.Fatalf("PC: circuit=%#x reference=%#x", gotPC, wantPC)
	}
}

// regFamily pairs an instruction family name with the raw encoding of
// "rd = family(x1, x2)" into x3, for the two-register-operand families
// named in the equivalence property.
type regFamily struct {
	name string
	raw  uint32
}

func regFamilies() []regFamily {
	return []regFamily{
		{"ADD", encodeR(0x00, 2, 1, 0x0, 3, opReg)},
		{"SUB", encodeR(0x20, 2, 1, 0x0, 3, opReg)},
		{"XOR", encodeR(0x00, 2, 1, 0x4, 3, opReg)},
		{"AND", encodeR(0x00, 2, 1, 0x7, 3, opReg)},
		{"OR", encodeR(0x00, 2, 1, 0x6, 3, opReg)},
		{"SLL", encodeR(0x00, 2, 1, 0x1, 3, opReg)},
		{"SRL", encodeR(0x00, 2, 1, 0x5, 3, opReg)},
		{"SRA", encodeR(0x20, 2, 1, 0x5, 3, opReg)},
		{"SLT", encodeR(0x00, 2, 1, 0x2, 3, opReg)},
		{"SLTU", encodeR(0x00, 2, 1, 0x3, 3, opReg)},
		{"MUL", encodeR(0x01, 2, 1, 0x0, 3, opReg)},
	}
}

// TestRegisterFamilyEquivalence is spec §8's "equivalence properties"
// check: for each two-operand lowered instruction family and a random
// sample of (rs1_value, rs2_value) pairs, the gate-level circuit's rd
// output must match rvref's bit-level reference for that same raw
// instruction and register state. The seed is fixed so the sample is
// reproducible across runs rather than flaking.
func TestRegisterFamilyEquivalence(t *testing.T) {
	const samplesPerFamily = 5
	rng := rand.New(rand.NewSource(1))

	for _, fam := range regFamilies() {
		for s := 0; s < samplesPerFamily; s++ {
			rs1Val := rng.Uint32()
			rs2Val := rng.Uint32()

			b, pc, regs := newFullStateBuilder(t)
			l := NewLowerer(b, memtier.NewUltra(nil), pc, regs)
			l.Run([]uint32{fam.raw})

			full := baseAssignment(circuit.FixedOverheadBits)
			copy(full[circuit.RegisterWireOffset(1, 0):], wordToBits(rs1Val))
			copy(full[circuit.RegisterWireOffset(2, 0):], wordToBits(rs2Val))
			result := evalCircuit(b, full)
			got := bitsToWord(result, l.Regs[3])

			ref := rvref.NewCPU(0)
			ref.Regs[1] = rs1Val
			ref.Regs[2] = rs2Val
			ref.Step(fam.raw)
			want := ref.Regs[3]

			if got != want {
				t.Fatalf("%s: rs1=%#x rs2=%#x: circuit=%#x reference=%#x", fam.name, rs1Val, rs2Val, got, want)
			}
		}
	}
}

// TestADDIEquivalence is the ADDI half of spec §8's equivalence property:
// a random sample of (rs1_value, imm) pairs over the full 12-bit signed
// immediate range, checked the same way as TestRegisterFamilyEquivalence.
func TestADDIEquivalence(t *testing.T) {
	const samples = 5
	rng := rand.New(rand.NewSource(2))

	for s := 0; s < samples; s++ {
		rs1Val := rng.Uint32()
		imm := int32(rng.Intn(4096) - 2048)
		raw := encodeI(uint32(imm), 1, 0x0, 3, opImm)

		b, pc, regs := newFullStateBuilder(t)
		l := NewLowerer(b, memtier.NewUltra(nil), pc, regs)
		l.Run([]uint32{raw})

		full := baseAssignment(circuit.FixedOverheadBits)
		copy(full[circuit.RegisterWireOffset(1, 0):], wordToBits(rs1Val))
		result := evalCircuit(b, full)
		got := bitsToWord(result, l.Regs[3])

		ref := rvref.NewCPU(0)
		ref.Regs[1] = rs1Val
		ref.Step(raw)
		want := ref.Regs[3]

		if got != want {
			t.Fatalf("ADDI: rs1=%#x imm=%d: circuit=%#x reference=%#x", rs1Val, imm, got, want)
		}
	}
}
