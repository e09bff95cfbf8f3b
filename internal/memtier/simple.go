package memtier

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/kernel"
)

// simpleWords is the Simple tier's word count (spec §4.4: "256 words,
// ~2200 gates per access").
const simpleWords = 256

// simpleAddressBits is the number of low address bits Simple decodes.
const simpleAddressBits = 8

// Simple is the same flat, unauthenticated register-file design as Ultra,
// scaled up to 256 words and an 8-bit decoder.
type Simple struct {
	cells [simpleWords][]circuit.WireId
}

// NewSimple creates a Simple tier with the given initial word contents.
// Words beyond len(initial) start at zero.
func NewSimple(initial [][]circuit.WireId) *Simple {
	s := &Simple{}
	for i := 0; i < simpleWords; i++ {
		if i < len(initial) {
			s.cells[i] = initial[i]
		} else {
			s.cells[i] = zeroWord()
		}
	}
	return s
}

// Access implements Tier for the Simple realization.
func (s *Simple) Access(b *dedup.Builder, address, writeData []circuit.WireId, writeEnable circuit.WireId) []circuit.WireId {
	addr := address[:simpleAddressBits]

	sel := make([]circuit.WireId, simpleWords)
	for i := 0; i < simpleWords; i++ {
		sel[i] = kernel.Equal(b, addr, constBits(i, simpleAddressBits))
	}

	readData := s.cells[0]
	for i := 1; i < simpleWords; i++ {
		readData = muxWord(b, sel[i], readData, s.cells[i])
	}

	for i := 0; i < simpleWords; i++ {
		doWrite := b.AND(writeEnable, sel[i])
		s.cells[i] = muxWord(b, doWrite, s.cells[i], writeData)
	}

	return readData
}
