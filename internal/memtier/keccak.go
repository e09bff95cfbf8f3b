package memtier

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
)

// lane is one 64-bit word of Keccak state, LSB (bit 0) first.
type lane = []circuit.WireId

// keccakRate is the SHA3-256 sponge rate in bits (1088 = 17 lanes of 64).
const keccakRate = 1088

// keccakCapacity is the SHA3-256 sponge capacity in bits (512 = 8 lanes).
const keccakCapacity = 1600 - keccakRate

// rhoPiOffset records, for state index dst, which source lane (src) is
// rotated by how many bits to produce it -- the combined rho+pi step.
// Values ported directly from a gate-level Keccak-f[1600] circuit (see
// DESIGN.md): the rotation-offset table is fixed by the Keccak
// specification and is not something an implementer should re-derive by
// hand.
type rhoPiOffset struct {
	src, rot int
}

var rhoPi = [25]rhoPiOffset{
	0:  {0, 0},
	8:  {1, 36},
	11: {2, 3},
	19: {3, 41},
	22: {4, 18},
	2:  {5, 1},
	5:  {6, 44},
	13: {7, 10},
	16: {8, 45},
	24: {9, 2},
	4:  {10, 62},
	7:  {11, 6},
	10: {12, 43},
	18: {13, 15},
	21: {14, 61},
	1:  {15, 28},
	9:  {16, 55},
	12: {17, 25},
	15: {18, 21},
	23: {19, 56},
	3:  {20, 27},
	6:  {21, 20},
	14: {22, 39},
	17: {23, 8},
	20: {24, 14},
}

// roundConstants are the 24 round constants RC[i] of Keccak-f[1600], one
// bit per position (LSB first), derived from the LFSR the Keccak
// specification defines.
var roundConstants = buildRoundConstants()

func buildRoundConstants() [24]uint64 {
	return [24]uint64{
		0x0000000000000001, 0x0000000000008082, 0x800000000000808A, 0x8000000080008000,
		0x000000000000808B, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
		0x000000000000008A, 0x0000000000000088, 0x0000000080008009, 0x000000008000000A,
		0x000000008000808B, 0x800000000000008B, 0x8000000000008089, 0x8000000000008003,
		0x8000000000008002, 0x8000000000000080, 0x000000000000800A, 0x800000008000000A,
		0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
	}
}

// rotateLeftLane rotates a 64-wire lane left by n bits. Pure rewiring: the
// returned slice references the input wires in a new order and costs zero
// gates (spec §9's "rotate-as-pure-rewiring" technique).
func rotateLeftLane(l lane, n int) lane {
	n %= 64
	out := make(lane, 64)
	for i := 0; i < 64; i++ {
		out[i] = l[(i-n+64*2)%64]
	}
	return out
}

func xorLane(b *dedup.Builder, x, y lane) lane {
	out := make(lane, 64)
	for i := range out {
		out[i] = b.XOR(x[i], y[i])
	}
	return out
}

func andLane(b *dedup.Builder, x, y lane) lane {
	out := make(lane, 64)
	for i := range out {
		out[i] = b.AND(x[i], y[i])
	}
	return out
}

func notLane(b *dedup.Builder, x lane) lane {
	out := make(lane, 64)
	for i := range out {
		out[i] = b.NOT(x[i])
	}
	return out
}

func zeroLane() lane {
	out := make(lane, 64)
	for i := range out {
		out[i] = circuit.WireZero
	}
	return out
}

// keccakF1600 applies the 24-round Keccak-f[1600] permutation to a 25-lane
// state, following theta/rho/pi/chi/iota exactly as a gate-level
// reference circuit expresses them (see DESIGN.md for the grounding
// source). Gate cost is dominated by chi (25 lanes x 64 bits x 3 gates)
// and theta (≈25 lanes x 64 bits x 2 gates) per round, times 24 rounds --
// this single permutation call is the bulk of the Secure tier's
// ~3.9M-gates-per-access budget (spec §4.4).
func keccakF1600(b *dedup.Builder, a [25]lane) [25]lane {
	for round := 0; round < 24; round++ {
		// theta
		var c [5]lane
		for x := 0; x < 5; x++ {
			c[x] = xorLane(b, xorLane(b, a[5*x+1], a[5*x+2]), xorLane(b, a[5*x+3], a[5*x+4]))
		}
		var d, da [5]lane
		for x := 0; x < 5; x++ {
			d[x] = xorLane(b, c[(x+4)%5], rotateLeftLane(c[(x+1)%5], 1))
			da[x] = xorLane(b, a[((x+4)%5)*5], rotateLeftLane(a[((x+1)%5)*5], 1))
		}
		for i := 0; i < 25; i++ {
			tmp := xorLane(b, da[i/5], a[i])
			a[i] = xorLane(b, tmp, d[i/5])
		}

		// rho + pi
		var bs [25]lane
		for dst := 0; dst < 25; dst++ {
			off := rhoPi[dst]
			bs[dst] = rotateLeftLane(a[off.src], off.rot)
		}

		// chi
		for k := 0; k < 25; k++ {
			inv := notLane(b, bs[(k+5)%25])
			term := andLane(b, inv, bs[(k+10)%25])
			a[k] = xorLane(b, bs[k], term)
		}

		// iota
		rc := roundConstants[round]
		for bit := 0; bit < 64; bit++ {
			if (rc>>uint(bit))&1 == 1 {
				a[0][bit] = b.NOT(a[0][bit])
			}
		}
	}
	return a
}

// bufToStateIndex maps absorbed-block lane index o (in x + 5y scan order)
// to the state-array index 5x + y used internally, matching the
// convention of the grounding circuit's xorIn step.
func bufToStateIndex(o int) int {
	x, y := o%5, o/5
	return 5*x + y
}

// Sponge256 hashes an input of up to keccakRate bits into a 256-bit
// SHA3-256-style digest using a single-block sponge: pad10*1 to the rate
// boundary, permute, squeeze the first 256 bits. Inputs (256 or 512 bits
// for the Secure memory tier's leaf and node hashes) always fit in one
// block.
func Sponge256(b *dedup.Builder, input []circuit.WireId) []circuit.WireId {
	if len(input) >= keccakRate {
		panic("memtier: Sponge256 input exceeds one block; multi-block absorption not implemented")
	}

	padded := make([]circuit.WireId, keccakRate)
	copy(padded, input)
	for i := len(input); i < keccakRate; i++ {
		padded[i] = circuit.WireZero
	}
	padded[len(input)] = circuit.WireOne
	padded[keccakRate-1] = b.XOR(padded[keccakRate-1], circuit.WireOne)

	var state [25]lane
	for i := range state {
		state[i] = zeroLane()
	}
	for o := 0; o < keccakRate/64; o++ {
		bufLane := lane(padded[o*64 : (o+1)*64])
		state[bufToStateIndex(o)] = bufLane
	}

	state = keccakF1600(b, state)

	out := make([]circuit.WireId, 256)
	for o := 0; o < 256/64; o++ {
		copy(out[o*64:(o+1)*64], state[bufToStateIndex(o)])
	}
	return out
}
