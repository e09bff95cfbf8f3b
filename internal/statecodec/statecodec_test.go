package statecodec

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := MachineState{
		PC:     0x1000,
		Memory: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}
	s.Regs[1] = 0xCAFEBABE
	s.Regs[31] = 42

	bits := Encode(s)
	got := Decode(bits, len(s.Memory))

	if got.PC != s.PC {
		t.Fatalf("PC: got %#x, want %#x", got.PC, s.PC)
	}
	if got.Regs != s.Regs {
		t.Fatalf("Regs: got %v, want %v", got.Regs, s.Regs)
	}
	if !bytes.Equal(got.Memory, s.Memory) {
		t.Fatalf("Memory: got %v, want %v", got.Memory, s.Memory)
	}
}

func TestEncodeConstantWires(t *testing.T) {
	bits := Encode(MachineState{Memory: nil})
	if bits[0] {
		t.Fatal("wire 0 must be the constant-false input")
	}
	if !bits[1] {
		t.Fatal("wire 1 must be the constant-true input")
	}
}
