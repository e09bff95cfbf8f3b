package circuit

import "errors"

// Sentinel errors of the compiler. Only ErrCircuitTooLarge (through
// NewArena's CircuitTooLargeError) is returned anywhere in this module.
// Wrapped with fmt.Errorf("%w: ...") where extra context (the offending
// values) is useful; never replaced with ad hoc dynamic errors.
var (
	// ErrCircuitTooLarge is returned when a requested input or output
	// boundary exceeds MaxBoundaryBits.
	ErrCircuitTooLarge = errors.New("circuit: requested boundary exceeds platform cap")

	// ErrUnsupportedOpcode identifies an instruction word that does not
	// match any known opcode/funct3/funct7 combination. internal/lower does
	// not return it: Lowerer.Run and Lowerer.StepRaw report no errors, and
	// an instruction with an unrecognized opcode is lowered as a plain PC
	// advance by 4.
	ErrUnsupportedOpcode = errors.New("circuit: unsupported opcode")

	// ErrMemoryConstraintExceeded identifies a program whose declared
	// memory footprint exceeds the platform cap once PC/register overhead
	// is accounted for. No constructor in this module checks the footprint
	// or returns it.
	ErrMemoryConstraintExceeded = errors.New("circuit: memory footprint exceeds platform cap")

	// ErrOutOfMemory identifies an underlying allocation failure. Nothing
	// in this module returns it.
	ErrOutOfMemory = errors.New("circuit: out of memory")
)

// CircuitTooLargeError carries the requested and maximum boundary widths
// alongside the ErrCircuitTooLarge sentinel.
type CircuitTooLargeError struct {
	Requested uint64
	Maximum   uint64
}

func (e *CircuitTooLargeError) Error() string {
	return ErrCircuitTooLarge.Error()
}

func (e *CircuitTooLargeError) Unwrap() error { return ErrCircuitTooLarge }

// UnsupportedOpcodeError carries the offending instruction word.
type UnsupportedOpcodeError struct {
	Instruction uint32
}

func (e *UnsupportedOpcodeError) Error() string {
	return ErrUnsupportedOpcode.Error()
}

func (e *UnsupportedOpcodeError) Unwrap() error { return ErrUnsupportedOpcode }

// MemoryConstraintExceededError carries the program's required footprint
// and the platform cap, both in bytes.
type MemoryConstraintExceededError struct {
	RequiredBytes uint64
	MaxBytes      uint64
}

func (e *MemoryConstraintExceededError) Error() string {
	return ErrMemoryConstraintExceeded.Error()
}

func (e *MemoryConstraintExceededError) Unwrap() error { return ErrMemoryConstraintExceeded }
