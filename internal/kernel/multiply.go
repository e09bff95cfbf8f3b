package kernel

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
)

// productWidth is the accumulator width. Two 32-bit operands, signed or
// unsigned, always produce a true mathematical product representable in
// 64 bits of two's-complement/unsigned arithmetic; accumulating modulo
// 2^64 and discarding anything the Booth windows push past bit 63 is
// exactly what a fixed-width hardware multiplier does (spec §4.3 step 5:
// "MUL returns the low 32 bits; MULH* return the high 32").
const productWidth = 64

// boothWindows covers a 33-bit signed-or-zero-extended operand (32
// operand bits plus one extension bit) in 17 overlapping 3-bit windows,
// window i examining bits (2i-1, 2i, 2i+1) with bit -1 implicitly zero.
const boothWindows = 17

// extendOperand widens a 32-bit operand to 33 bits: the 33rd bit is a
// sign-replication when signed is true, or a constant zero when false.
// This lets one Booth-encoding network handle signed and unsigned
// multiplicands/multipliers alike -- the "signedness handled ... by
// sign-extending inputs before encoding" step the spec calls for.
func extendOperand(v []circuit.WireId, signed bool) []circuit.WireId {
	out := make([]circuit.WireId, 33)
	copy(out, v)
	if signed {
		out[32] = v[31]
	} else {
		out[32] = circuit.WireZero
	}
	return out
}

// boothDigit classifies one 3-bit window (a=b[2i+1], mid=b[2i], lo=b[2i-1])
// into (negate, one, two) selecting the partial product {0, ±M, ±2M}.
func boothDigit(b *dedup.Builder, a, mid, lo circuit.WireId) (negate, one, two circuit.WireId) {
	andMidLo := b.AND(mid, lo)
	nMid := b.NOT(mid)
	nLo := b.NOT(lo)
	andNeither := b.AND(nMid, nLo)
	one = b.XOR(mid, lo)
	two = b.MUX(a, andMidLo, andNeither)
	negate = b.AND(a, b.NOT(andMidLo))
	return
}

// alignSigned places a signed value `v` at bit offset `shift` within a
// `width`-wide frame, sign-extending beyond v's own width and zero-filling
// below the shift.
func alignSigned(v []circuit.WireId, shift, width int) []circuit.WireId {
	out := make([]circuit.WireId, width)
	top := v[len(v)-1]
	for j := 0; j < width; j++ {
		src := j - shift
		switch {
		case src < 0:
			out[j] = circuit.WireZero
		case src < len(v):
			out[j] = v[src]
		default:
			out[j] = top
		}
	}
	return out
}

// alignUnsignedBit places a single unsigned correction bit at `shift`,
// zero-filled elsewhere (no sign extension: it is a {0,1} addend, not a
// signed number).
func alignUnsignedBit(bit circuit.WireId, shift, width int) []circuit.WireId {
	out := make([]circuit.WireId, width)
	for j := range out {
		out[j] = circuit.WireZero
	}
	if shift >= 0 && shift < width {
		out[shift] = bit
	}
	return out
}

// csaAccumulate folds one addend into a carry-save (sum, carry) pair using
// a 3:2 compressor per bit -- the iterative "compress any column with >= 3
// bits" step of spec §4.3, realized as a classic carry-save adder array.
func csaAccumulate(b *dedup.Builder, sumRow, carryRow, addend []circuit.WireId) (newSum, newCarry []circuit.WireId) {
	width := len(sumRow)
	newSum = make([]circuit.WireId, width)
	newCarry = make([]circuit.WireId, width)
	for i := 0; i < width; i++ {
		s, c := FullAdder(b, sumRow[i], carryRow[i], addend[i])
		newSum[i] = s
		if i+1 < width {
			newCarry[i+1] = c
		}
	}
	newCarry[0] = circuit.WireZero
	return newSum, newCarry
}

// boothPartialProduct constructs partial product i's contribution, magnitude
// {0, M, 2M} selected by (one, two) and conditionally inverted by negate,
// aligned into the productWidth-wide accumulator frame at column 2i.
func boothPartialProduct(b *dedup.Builder, m []circuit.WireId, one, two, negate circuit.WireId, shift int) []circuit.WireId {
	mExt := alignSigned(m, 0, productWidth)
	twoM := alignSigned(m, 1, productWidth)
	out := make([]circuit.WireId, productWidth)
	for j := 0; j < productWidth; j++ {
		magBit := b.OR(b.AND(one, mExt[j]), b.AND(two, twoM[j]))
		out[j] = b.MUX(negate, magBit, b.NOT(magBit))
	}
	return alignSigned(out, shift, productWidth)
}

// multiply64 is the shared radix-4 Booth multiplier. multiplicand and
// multiplier are each widened to 33 bits per their own signedness; the
// result is a full 64-bit two's-complement/unsigned product.
func multiply64(b *dedup.Builder, multiplicand, multiplier []circuit.WireId, mSigned, ySigned bool) []circuit.WireId {
	m := extendOperand(multiplicand, mSigned)
	y := extendOperand(multiplier, ySigned)

	sumRow := make([]circuit.WireId, productWidth)
	carryRow := make([]circuit.WireId, productWidth)
	for i := range sumRow {
		sumRow[i] = circuit.WireZero
		carryRow[i] = circuit.WireZero
	}

	prevBit := circuit.WireZero
	for i := 0; i < boothWindows; i++ {
		lo := prevBit
		mid := bitAt(y, 2*i)
		hi := bitAt(y, 2*i+1)
		negate, one, two := boothDigit(b, hi, mid, lo)

		pp := boothPartialProduct(b, m, one, two, negate, 2*i)
		sumRow, carryRow = csaAccumulate(b, sumRow, carryRow, pp)

		correction := alignUnsignedBit(negate, 2*i, productWidth)
		sumRow, carryRow = csaAccumulate(b, sumRow, carryRow, correction)

		prevBit = hi
	}

	product, _ := KoggeStoneAdder(b, sumRow, carryRow, circuit.WireZero)
	return product
}

// bitAt returns v[i] if in range, the constant-zero wire for i < 0, and
// v's top (extension) bit for i >= len(v). The last Booth window reads bit
// 33 of the 33-bit extended operand; repeating the extension bit there
// keeps a negative signed operand negative, and for an unsigned operand
// that bit is already the constant-zero wire.
func bitAt(v []circuit.WireId, i int) circuit.WireId {
	if i < 0 {
		return circuit.WireZero
	}
	if i >= len(v) {
		return v[len(v)-1]
	}
	return v[i]
}

// Mul computes the low 32 bits of rs1 * rs2 (signedness irrelevant for the
// low half).
func Mul(b *dedup.Builder, rs1, rs2 []circuit.WireId) []circuit.WireId {
	p := multiply64(b, rs1, rs2, true, true)
	return p[:32]
}

// MulHigh computes the high 32 bits of a signed x signed product (MULH).
func MulHigh(b *dedup.Builder, rs1, rs2 []circuit.WireId) []circuit.WireId {
	p := multiply64(b, rs1, rs2, true, true)
	return p[32:64]
}

// MulHighUnsigned computes the high 32 bits of an unsigned x unsigned
// product (MULHU).
func MulHighUnsigned(b *dedup.Builder, rs1, rs2 []circuit.WireId) []circuit.WireId {
	p := multiply64(b, rs1, rs2, false, false)
	return p[32:64]
}

// MulHighSignedUnsigned computes the high 32 bits of a signed rs1 times
// unsigned rs2 product (MULHSU).
func MulHighSignedUnsigned(b *dedup.Builder, rs1, rs2 []circuit.WireId) []circuit.WireId {
	p := multiply64(b, rs1, rs2, true, false)
	return p[32:64]
}
