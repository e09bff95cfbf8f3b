package circuit

// Wire layout invariants (spec §3): wires 0 and 1 are the constant
// false/true input bits. Remaining input bits, in order, are 32 PC bits
// (LSB first), then 32 registers of 32 bits each (register r bit b at
// offset RegisterWireOffset(r, b)), then the memory image.

const (
	// NumConstantWires is the count of reserved constant input wires.
	NumConstantWires = 2
	// PCBits is the width of the program counter in the wire layout.
	PCBits = 32
	// NumRegisters is the RV32I register file size, including x0.
	NumRegisters = 32
	// RegisterBits is the width of one register.
	RegisterBits = 32

	// PCWireBase is the input-wire offset of PC bit 0.
	PCWireBase = NumConstantWires
	// RegisterWireBase is the input-wire offset of register 0 bit 0.
	RegisterWireBase = PCWireBase + PCBits
	// FixedOverheadBits is the input-wire count consumed by constants,
	// PC, and registers, before the memory image begins.
	FixedOverheadBits = RegisterWireBase + NumRegisters*RegisterBits

	// MaxBoundaryBits is the platform cap on input and output boundary
	// width: 10 MiB expressed in bits.
	MaxBoundaryBits = 10 * 1024 * 1024 * 8

	// MaxMemoryBytes is the largest memory image, in bytes, that fits
	// alongside the fixed PC/register overhead within MaxBoundaryBits.
	MaxMemoryBytes = (MaxBoundaryBits - FixedOverheadBits) / 8
)

// RegisterWireOffset returns the input-wire index of register r's bit b.
// Callers must ensure 0 <= r < NumRegisters and 0 <= b < RegisterBits.
func RegisterWireOffset(r, b int) int {
	return RegisterWireBase + RegisterBits*r + b
}

// MemoryWireBase returns the input-wire offset of the first memory bit,
// which does not depend on the memory image size.
func MemoryWireBase() int {
	return FixedOverheadBits
}

// InputBoundary computes the total input-wire count for a memory image of
// the given size in bytes.
func InputBoundary(memoryBytes int) int {
	return FixedOverheadBits + memoryBytes*8
}
