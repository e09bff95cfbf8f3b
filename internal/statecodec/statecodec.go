// Package statecodec packs and unpacks a RISC-V machine state into the
// circuit's fixed input/output boundary layout (spec §3, internal/circuit
// layout.go): two constant bits, 32 PC bits, 32 registers of 32 bits each,
// then the memory image, every field LSB first.
package statecodec

import "github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"

// MachineState is the RV32IM architectural state a compiled circuit reads
// as input and produces as output.
type MachineState struct {
	PC     uint32
	Regs   [circuit.NumRegisters]uint32
	Memory []byte
}

func putWord(bits []bool, offset int, v uint32) {
	for b := 0; b < 32; b++ {
		bits[offset+b] = (v>>uint(b))&1 == 1
	}
}

func getWord(bits []bool, offset int) uint32 {
	var v uint32
	for b := 0; b < 32; b++ {
		if bits[offset+b] {
			v |= 1 << uint(b)
		}
	}
	return v
}

// Encode produces the full boundary bit vector for s, sized for
// len(s.Memory) bytes of memory image.
func Encode(s MachineState) []bool {
	n := circuit.InputBoundary(len(s.Memory))
	bits := make([]bool, n)
	bits[circuit.WireOne] = true // constant-true input wire

	putWord(bits, circuit.PCWireBase, s.PC)
	for r := 0; r < circuit.NumRegisters; r++ {
		putWord(bits, circuit.RegisterWireOffset(r, 0), s.Regs[r])
	}

	base := circuit.MemoryWireBase()
	for i, byt := range s.Memory {
		for b := 0; b < 8; b++ {
			bits[base+i*8+b] = (byt>>uint(b))&1 == 1
		}
	}
	return bits
}

// Decode reconstructs a MachineState from a boundary bit vector produced
// by evaluating a compiled circuit, given the memory image size in bytes.
func Decode(bits []bool, memoryBytes int) MachineState {
	s := MachineState{Memory: make([]byte, memoryBytes)}
	s.PC = getWord(bits, circuit.PCWireBase)
	for r := 0; r < circuit.NumRegisters; r++ {
		s.Regs[r] = getWord(bits, circuit.RegisterWireOffset(r, 0))
	}

	base := circuit.MemoryWireBase()
	for i := range s.Memory {
		var byt byte
		for b := 0; b < 8; b++ {
			if bits[base+i*8+b] {
				byt |= 1 << uint(b)
			}
		}
		s.Memory[i] = byt
	}
	return s
}
