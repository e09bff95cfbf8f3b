// Package kernel implements the arithmetic, shift, multiply, and divide
// gate networks shared by the instruction lowerer (spec §4.3). Every
// kernel is a pure function over a *dedup.Builder and WireId slices: it
// allocates no state of its own and returns only the wires its caller
// asked for, consistent with the "scope-bound temp arrays" design note
// (spec §9) -- any intermediate wire array lives only for the duration of
// the call.
package kernel

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
)

// FullAdder computes sum = x xor y xor z and carry = majority(x, y, z),
// 7 gates total (matching the ripple-carry adder's per-bit cost): one XOR
// for the propagate term, one XOR for the sum, one AND for the first
// generate term, one AND for the second, and three gates for the OR that
// combines them (spec §4.3: "OR expanded as (x xor y) xor (x and y)").
func FullAdder(b *dedup.Builder, x, y, z circuit.WireId) (sum, carry circuit.WireId) {
	p := b.XOR(x, y)
	sum = b.XOR(p, z)
	g := b.AND(x, y)
	t := b.AND(p, z)
	carry = b.OR(g, t)
	return sum, carry
}

// RippleCarryAdder adds two equal-width operands with an explicit carry-in,
// bit by bit from LSB to MSB. Returns the sum of the same width plus the
// final carry-out.
func RippleCarryAdder(b *dedup.Builder, a, y []circuit.WireId, carryIn circuit.WireId) (sum []circuit.WireId, carryOut circuit.WireId) {
	n := len(a)
	sum = make([]circuit.WireId, n)
	carry := carryIn
	for i := 0; i < n; i++ {
		var s circuit.WireId
		s, carry = FullAdder(b, a[i], y[i], carry)
		sum[i] = s
	}
	return sum, carry
}

// Add32 adds two 32-bit operands with no carry-in, the lowerer's default
// adder (spec §4.3: "the lowerer's default is RCA").
func Add32(b *dedup.Builder, a, y []circuit.WireId) (sum []circuit.WireId, carryOut circuit.WireId) {
	return RippleCarryAdder(b, a, y, circuit.WireZero)
}

// KoggeStoneAdder computes a + y + carryIn using a parallel-prefix
// propagate/generate network of depth ceil(log2(n)), the optional adder
// spec §4.3 offers "for deeper parallelism". Used internally by the
// multiplier's final carry-propagate step where the two Wallace rows must
// be merged with minimal depth.
func KoggeStoneAdder(b *dedup.Builder, a, y []circuit.WireId, carryIn circuit.WireId) (sum []circuit.WireId, carryOut circuit.WireId) {
	n := len(a)
	p := make([]circuit.WireId, n)
	g := make([]circuit.WireId, n)
	for i := 0; i < n; i++ {
		p[i] = b.XOR(a[i], y[i])
		g[i] = b.AND(a[i], y[i])
	}
	// Fold the external carry-in into bit 0's generate term so the prefix
	// network alone determines every carry.
	g[0] = b.OR(g[0], b.AND(p[0], carryIn))

	for step := 1; step < n; step *= 2 {
		newP := make([]circuit.WireId, n)
		newG := make([]circuit.WireId, n)
		for i := 0; i < n; i++ {
			if i >= step {
				newP[i] = b.AND(p[i], p[i-step])
				newG[i] = b.OR(g[i], b.AND(p[i], g[i-step]))
			} else {
				newP[i] = p[i]
				newG[i] = g[i]
			}
		}
		p, g = newP, newG
	}

	sum = make([]circuit.WireId, n)
	sum[0] = b.XOR(a[0], b.XOR(y[0], carryIn))
	for i := 1; i < n; i++ {
		sum[i] = b.XOR(b.XOR(a[i], y[i]), g[i-1])
	}
	carryOut = g[n-1]
	return sum, carryOut
}
