// Package memtier implements the three interchangeable memory realizations
// (spec §4.4): Ultra, Simple, and Secure. Each exposes the same Access
// capability so the lowerer can target any tier without knowing which one
// it is wired to (spec §9: "reshape memory as a capability interface
// chosen once per compile, rather than a type switch sprinkled through the
// lowerer").
package memtier

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
)

// Tier is one memory realization. Access performs a single read-or-write:
// when writeEnable is the constant-true wire, writeData replaces the
// addressed word and readData reflects the old value (matching RISC-V
// load/store semantics, where a store does not also read back the new
// value in the same cycle); when writeEnable is constant-false, writeData
// is ignored.
type Tier interface {
	Access(b *dedup.Builder, address, writeData []circuit.WireId, writeEnable circuit.WireId) (readData []circuit.WireId)
}

// wordBits is the machine word width every tier addresses in.
const wordBits = 32

func zeroWord() []circuit.WireId {
	out := make([]circuit.WireId, wordBits)
	for i := range out {
		out[i] = circuit.WireZero
	}
	return out
}

func muxWord(b *dedup.Builder, sel circuit.WireId, whenFalse, whenTrue []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, len(whenFalse))
	for i := range out {
		out[i] = b.MUX(sel, whenFalse[i], whenTrue[i])
	}
	return out
}
