package memtier

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/kernel"
)

// MerkleDepth is the tree height for the Secure tier's 2^20-leaf address
// space (spec §4.4: "Merkle-authenticated ... 2^20 leaves").
const MerkleDepth = 20

// HashBits is the digest width used for both leaf and node hashes.
const HashBits = 256

// SecureWitnessBits returns the number of static input-boundary bits the
// Secure tier needs for numAccesses memory operations: one persistent
// 256-bit root, plus per access a 20-level sibling path (20 x 256 bits)
// and the pre-access leaf value (32 bits).
//
// The tree's authentication witnesses cannot be free-floating "private"
// wires: every wire in this model is either an input bit or a gate output
// (spec §3's Data Model), so an untrusted prover's claimed sibling hashes
// must be genuine input wires, checked against the root by equality gates
// rather than trusted by construction. Because the instruction stream is
// fixed before lowering begins, the number of memory accesses -- and
// therefore the witness wire count -- is known up front from a pre-scan
// of load/store instructions.
func SecureWitnessBits(numAccesses int) int {
	return HashBits + numAccesses*(MerkleDepth*HashBits+32)
}

// Secure is the Merkle-authenticated memory tier. Unlike Ultra and Simple,
// its per-access cost (~3.9M gates, spec §4.4) is dominated by two
// Keccak-f[1600] permutations per tree level: the old-leaf authentication
// climb and the new-leaf commitment climb.
type Secure struct {
	root      []circuit.WireId
	siblings  [][MerkleDepth][]circuit.WireId
	oldLeaves [][]circuit.WireId
	next      int
}

func wireRange(cursor *int, n int) []circuit.WireId {
	out := make([]circuit.WireId, n)
	for i := range out {
		out[i] = circuit.WireId(*cursor + i)
	}
	*cursor += n
	return out
}

// NewSecure lays out the Secure tier's witness wires starting at input
// wire offset base, for a pre-scanned numAccesses memory operations. The
// caller must have sized the circuit's input boundary to include
// SecureWitnessBits(numAccesses) wires at that offset.
func NewSecure(base int, numAccesses int) *Secure {
	cursor := base
	s := &Secure{
		root:      wireRange(&cursor, HashBits),
		siblings:  make([][MerkleDepth][]circuit.WireId, numAccesses),
		oldLeaves: make([][]circuit.WireId, numAccesses),
	}
	for i := 0; i < numAccesses; i++ {
		for lvl := 0; lvl < MerkleDepth; lvl++ {
			s.siblings[i][lvl] = wireRange(&cursor, HashBits)
		}
		s.oldLeaves[i] = wireRange(&cursor, wordBits)
	}
	return s
}

func zeroExtendTo(v []circuit.WireId, width int) []circuit.WireId {
	out := make([]circuit.WireId, width)
	copy(out, v)
	for i := len(v); i < width; i++ {
		out[i] = circuit.WireZero
	}
	return out
}

// climb hashes leaf up to the root along the given sibling path, using
// addressBits (LSB first, one per level) to decide, at each level,
// whether the running hash is the left or right child.
func climb(b *dedup.Builder, leaf []circuit.WireId, siblings [MerkleDepth][]circuit.WireId, addressBits []circuit.WireId) []circuit.WireId {
	cur := Sponge256(b, zeroExtendTo(leaf, HashBits))
	for lvl := 0; lvl < MerkleDepth; lvl++ {
		sib := siblings[lvl]
		bit := addressBits[lvl]
		left := muxWord(b, bit, cur, sib)
		right := muxWord(b, bit, sib, cur)
		node := append(append([]circuit.WireId{}, left...), right...)
		cur = Sponge256(b, node)
	}
	return cur
}

// Access implements Tier for the Secure realization. address's low
// MerkleDepth bits select the leaf; readData is gated to the constant-zero
// word whenever the supplied sibling path does not authenticate against
// the current root (spec §4.4: "a failed proof reads as zero rather than
// trusting the prover's claimed value"), and the root only advances to the
// newly computed value when the proof was valid.
func (s *Secure) Access(b *dedup.Builder, address, writeData []circuit.WireId, writeEnable circuit.WireId) []circuit.WireId {
	idx := s.next
	s.next++

	addressBits := address[:MerkleDepth]
	oldLeaf := s.oldLeaves[idx]
	siblings := s.siblings[idx]

	computedRoot := climb(b, oldLeaf, siblings, addressBits)
	valid := kernel.Equal(b, computedRoot, s.root)

	readData := make([]circuit.WireId, wordBits)
	for i := range readData {
		readData[i] = b.AND(valid, oldLeaf[i])
	}

	newLeaf := muxWord(b, writeEnable, oldLeaf, writeData)
	newRoot := climb(b, newLeaf, siblings, addressBits)

	nextRoot := make([]circuit.WireId, HashBits)
	for i := range nextRoot {
		nextRoot[i] = b.MUX(valid, s.root[i], newRoot[i])
	}
	s.root = nextRoot

	return readData
}

