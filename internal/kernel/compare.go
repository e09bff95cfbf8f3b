package kernel

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
)

// Equal folds a running equality flag across every bit: diff = a xor b,
// equal = equal AND NOT(diff). 3 gates per bit except bit 0, which needs
// no AND: 95 gates for a 32-bit equality.
func Equal(b *dedup.Builder, a, y []circuit.WireId) circuit.WireId {
	equal := circuit.WireOne
	for i := range a {
		diff := b.XOR(a[i], y[i])
		notDiff := b.NOT(diff)
		if i == 0 {
			equal = notDiff
		} else {
			equal = b.AND(equal, notDiff)
		}
	}
	return equal
}

// NotEqual is the complement of Equal.
func NotEqual(b *dedup.Builder, a, y []circuit.WireId) circuit.WireId {
	return b.NOT(Equal(b, a, y))
}

// UnsignedLess ripples from the most-significant bit down, tracking
// equal-so-far and less-so-far (spec §4.3 "Unsigned less-than").
func UnsignedLess(b *dedup.Builder, a, y []circuit.WireId) circuit.WireId {
	n := len(a)
	eq := circuit.WireOne
	less := circuit.WireZero
	for i := n - 1; i >= 0; i-- {
		diff := b.XOR(a[i], y[i])
		bitLess := b.AND(b.NOT(a[i]), y[i])
		less = b.OR(less, b.AND(eq, bitLess))
		eq = b.AND(eq, b.NOT(diff))
	}
	return less
}

// SignedLess handles differing signs directly and falls back to the
// unsigned comparator when signs agree (spec §4.3 "signs_differ ?
// a_sign : unsigned_lt(magnitudes)").
func SignedLess(b *dedup.Builder, a, y []circuit.WireId) circuit.WireId {
	n := len(a)
	signA := a[n-1]
	signY := y[n-1]
	signsDiffer := b.XOR(signA, signY)
	unsignedLt := UnsignedLess(b, a, y)
	return b.MUX(signsDiffer, unsignedLt, signA)
}

// GreaterOrEqualUnsigned is NOT(UnsignedLess(a, y)).
func GreaterOrEqualUnsigned(b *dedup.Builder, a, y []circuit.WireId) circuit.WireId {
	return b.NOT(UnsignedLess(b, a, y))
}

// GreaterOrEqualSigned is NOT(SignedLess(a, y)).
func GreaterOrEqualSigned(b *dedup.Builder, a, y []circuit.WireId) circuit.WireId {
	return b.NOT(SignedLess(b, a, y))
}
