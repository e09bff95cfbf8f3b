package dedup

import (
	"testing"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
)

func newBuilder(t *testing.T, enableDedup bool) *Builder {
	t.Helper()
	a, err := circuit.NewArena(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	return NewBuilder(a, enableDedup, true)
}

func TestDedupReusesIdenticalGate(t *testing.T) {
	b := newBuilder(t, true)
	first := b.AND(0, 1)
	second := b.AND(0, 1)
	if first != second {
		t.Fatalf("expected identical AND gates to collapse, got %d and %d", first, second)
	}
	if b.Arena.NumGates() != 1 {
		t.Fatalf("expected exactly one gate appended, got %d", b.Arena.NumGates())
	}
}

func TestDedupNormalizesCommutativeOperands(t *testing.T) {
	b := newBuilder(t, true)
	first := b.XOR(0, 1)
	second := b.XOR(1, 0)
	if first != second {
		t.Fatal("commutative operand order should not produce distinct gates")
	}
}

func TestDedupDisabledAlwaysAppends(t *testing.T) {
	b := newBuilder(t, false)
	b.AND(0, 1)
	b.AND(0, 1)
	if b.Arena.NumGates() != 2 {
		t.Fatalf("expected 2 gates with dedup disabled, got %d", b.Arena.NumGates())
	}
}

func TestPatternCacheRoundTrip(t *testing.T) {
	pc := NewPatternCache()
	inputs := []circuit.WireId{10, 11, 12}
	outputs := []circuit.WireId{99, 100}
	if _, ok := pc.Lookup("adder32", inputs); ok {
		t.Fatal("expected miss before Store")
	}
	pc.Store("adder32", inputs, outputs)
	got, ok := pc.Lookup("adder32", inputs)
	if !ok {
		t.Fatal("expected hit after Store")
	}
	if len(got) != len(outputs) || got[0] != outputs[0] || got[1] != outputs[1] {
		t.Fatalf("roundtrip mismatch: got %v want %v", got, outputs)
	}
}

func TestMUXSelectsCorrectBranch(t *testing.T) {
	b := newBuilder(t, false)
	out := b.MUX(circuit.WireZero, circuit.WireZero, circuit.WireOne)
	if out == 0 {
		t.Fatal("expected a fresh wire for the MUX output")
	}
	outSel := b.MUX(circuit.WireOne, circuit.WireZero, circuit.WireOne)

	vals := make([]bool, b.Arena.NextWireID())
	vals[circuit.WireOne] = true
	for _, g := range b.Arena.Gates() {
		switch g.Kind {
		case circuit.KindAND:
			vals[g.Output] = vals[g.Left] && vals[g.Right]
		case circuit.KindXOR:
			vals[g.Output] = vals[g.Left] != vals[g.Right]
		}
	}
	if vals[out] {
		t.Fatal("sel=0 should select b0 (false)")
	}
	if !vals[outSel] {
		t.Fatal("sel=1 should select b1 (true)")
	}
}
