package memtier

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/kernel"
)

// ultraWords is the Ultra tier's word count (spec §4.4: "8 words, ~200
// gates per access").
const ultraWords = 8

// ultraAddressBits is the number of low address bits Ultra decodes; any
// higher bits are the caller's responsibility to have masked off.
const ultraAddressBits = 3

// Ultra is the smallest memory tier: a flat register file with no
// authentication, addressed by a 3-bit decoder and read through an 8:1 mux
// tree. Each Access call threads the cell contents forward by rebinding
// the stored wire vectors, which is how a build-time circuit compiler
// represents a RAM cell changing value between instructions -- there is no
// runtime store, only a sequence of wire vectors chained through MUXes.
type Ultra struct {
	cells [ultraWords][]circuit.WireId
}

// NewUltra creates an Ultra tier with the given initial word contents.
// Words beyond len(initial) start at zero.
func NewUltra(initial [][]circuit.WireId) *Ultra {
	u := &Ultra{}
	for i := 0; i < ultraWords; i++ {
		if i < len(initial) {
			u.cells[i] = initial[i]
		} else {
			u.cells[i] = zeroWord()
		}
	}
	return u
}

func constBits(v, width int) []circuit.WireId {
	out := make([]circuit.WireId, width)
	for i := range out {
		if (v>>uint(i))&1 == 1 {
			out[i] = circuit.WireOne
		} else {
			out[i] = circuit.WireZero
		}
	}
	return out
}

// Access implements Tier for the Ultra realization.
func (u *Ultra) Access(b *dedup.Builder, address, writeData []circuit.WireId, writeEnable circuit.WireId) []circuit.WireId {
	addr := address[:ultraAddressBits]

	sel := make([]circuit.WireId, ultraWords)
	for i := 0; i < ultraWords; i++ {
		sel[i] = kernel.Equal(b, addr, constBits(i, ultraAddressBits))
	}

	level := append([][]circuit.WireId(nil), u.cells[:]...)
	for bit := 0; bit < ultraAddressBits; bit++ {
		next := make([][]circuit.WireId, len(level)/2)
		for i := range next {
			next[i] = muxWord(b, addr[bit], level[2*i], level[2*i+1])
		}
		level = next
	}
	readData := level[0]

	for i := 0; i < ultraWords; i++ {
		doWrite := b.AND(writeEnable, sel[i])
		u.cells[i] = muxWord(b, doWrite, u.cells[i], writeData)
	}

	return readData
}
