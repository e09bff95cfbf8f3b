package circuit

import "testing"

func TestNewArenaRejectsOversizeBoundary(t *testing.T) {
	_, err := NewArena(MaxBoundaryBits+1, 1)
	if err == nil {
		t.Fatal("expected ErrCircuitTooLarge")
	}
	var tl *CircuitTooLargeError
	if !asCircuitTooLarge(err, &tl) {
		t.Fatalf("expected *CircuitTooLargeError, got %T", err)
	}
}

func asCircuitTooLarge(err error, target **CircuitTooLargeError) bool {
	if e, ok := err.(*CircuitTooLargeError); ok {
		*target = e
		return true
	}
	return false
}

func TestAllocateWireMonotonic(t *testing.T) {
	a, err := NewArena(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	first := a.AllocateWire()
	second := a.AllocateWire()
	if second != first+1 {
		t.Fatalf("expected monotonic ids, got %d then %d", first, second)
	}
	if first != 4 {
		t.Fatalf("expected allocator to start after input wires, got %d", first)
	}
}

func TestNewGateUpholdsI2(t *testing.T) {
	a, _ := NewArena(4, 1)
	before := a.NextWireID()
	out := a.NewGate(0, 1, KindAND)
	if out != before {
		t.Fatalf("expected output %d, got %d", before, out)
	}
	if a.NextWireID() != before+1 {
		t.Fatal("next_wire_id did not advance by exactly one")
	}
	g := a.Gate(0)
	if g.Output != out || g.Left != 0 || g.Right != 1 || g.Kind != KindAND {
		t.Fatalf("unexpected gate: %+v", g)
	}
}

func TestAddGateRejectsUnallocatedInputs(t *testing.T) {
	a, _ := NewArena(4, 1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unallocated input wire")
		}
	}()
	a.AddGate(0, 100, 4, KindXOR)
}

func TestAddGateRejectsOutputInInputRange(t *testing.T) {
	a, _ := NewArena(4, 1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for output within input range")
		}
	}()
	a.AddGate(0, 1, 2, KindXOR)
}

func TestRegisterWireOffsetLayout(t *testing.T) {
	if RegisterWireOffset(0, 0) != RegisterWireBase {
		t.Fatal("register 0 bit 0 should start the register range")
	}
	if RegisterWireOffset(1, 0) != RegisterWireBase+RegisterBits {
		t.Fatal("register 1 should begin exactly one register width later")
	}
	if MemoryWireBase() != FixedOverheadBits {
		t.Fatal("memory must begin immediately after the fixed overhead")
	}
}

func TestAppendBatchPreservesOrder(t *testing.T) {
	a, _ := NewArena(4, 1)
	w := a.AllocateWires(2)
	batch := []Gate{
		{Left: 0, Right: 1, Output: w[0], Kind: KindAND},
		{Left: w[0], Right: 1, Output: w[1], Kind: KindXOR},
	}
	a.AppendBatch(batch)
	if a.NumGates() != 2 {
		t.Fatalf("expected 2 gates, got %d", a.NumGates())
	}
	if a.Gate(0).Output != w[0] || a.Gate(1).Output != w[1] {
		t.Fatal("batch gates were not appended in order")
	}
}
