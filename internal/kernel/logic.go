package kernel

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
)

// AndVec, OrVec, XorVec, NotVec apply the named boolean operator bitwise
// across equal-width wire vectors (spec §4.2 "Logic R/I-type": AND, OR,
// XOR and their immediate forms are pure bitwise operators, one gate-tree
// per bit, no carry chain).

func AndVec(b *dedup.Builder, x, y []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, len(x))
	for i := range out {
		out[i] = b.AND(x[i], y[i])
	}
	return out
}

func OrVec(b *dedup.Builder, x, y []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, len(x))
	for i := range out {
		out[i] = b.OR(x[i], y[i])
	}
	return out
}

func XorVec(b *dedup.Builder, x, y []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, len(x))
	for i := range out {
		out[i] = b.XOR(x[i], y[i])
	}
	return out
}

func NotVec(b *dedup.Builder, x []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, len(x))
	for i := range out {
		out[i] = b.NOT(x[i])
	}
	return out
}

// MuxVec selects whenTrue bit-by-bit when sel is the constant/variable
// true wire, whenFalse otherwise.
func MuxVec(b *dedup.Builder, sel circuit.WireId, whenFalse, whenTrue []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, len(whenFalse))
	for i := range out {
		out[i] = b.MUX(sel, whenFalse[i], whenTrue[i])
	}
	return out
}

// ConstWord returns a compile-time-known 32-bit constant as a wire vector
// of the constant-false/true wires. Immediates are part of the public
// program text, so no gates are needed to materialize them.
func ConstWord(v uint32) []circuit.WireId {
	out := make([]circuit.WireId, 32)
	for i := range out {
		if (v>>uint(i))&1 == 1 {
			out[i] = circuit.WireOne
		} else {
			out[i] = circuit.WireZero
		}
	}
	return out
}
