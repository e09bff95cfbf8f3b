package kernel

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
)

// UnsignedDivide implements the restoring bit-serial divider (spec §4.3):
// 32 iterations from MSB to LSB, each shifting the remainder left by one
// bit (bringing in the next dividend bit), conditionally subtracting the
// divisor, and recording the subtraction outcome as a quotient bit. The
// remainder is carried in a 33-bit working register so the transient value
// before a corrective subtraction can exceed the 32-bit divisor without
// wrapping (a plain 32-bit register would silently truncate it).
func UnsignedDivide(b *dedup.Builder, dividend, divisor []circuit.WireId) (quotient, remainder []circuit.WireId) {
	n := len(dividend)
	divisorExt := append(append([]circuit.WireId{}, divisor...), circuit.WireZero)

	rem := make([]circuit.WireId, n+1)
	for i := range rem {
		rem[i] = circuit.WireZero
	}
	quotient = make([]circuit.WireId, n)

	for i := n - 1; i >= 0; i-- {
		shifted := make([]circuit.WireId, n+1)
		shifted[0] = dividend[i]
		copy(shifted[1:], rem[:n])

		canSub := GreaterOrEqualUnsigned(b, shifted, divisorExt)
		subResult, _ := Subtract32(b, shifted, divisorExt)

		next := make([]circuit.WireId, n+1)
		for j := 0; j <= n; j++ {
			next[j] = b.MUX(canSub, shifted[j], subResult[j])
		}
		rem = next
		quotient[i] = canSub
	}
	return quotient, rem[:n]
}

// divisorIsZero returns a wire that is true exactly when divisor's value is
// zero (an equality comparison against the constant-zero word), used to
// select the RISC-V divide-by-zero fixpoint.
func divisorIsZero(b *dedup.Builder, divisor []circuit.WireId) circuit.WireId {
	zero := make([]circuit.WireId, len(divisor))
	for i := range zero {
		zero[i] = circuit.WireZero
	}
	return Equal(b, divisor, zero)
}

func muxWords(b *dedup.Builder, sel circuit.WireId, whenFalse, whenTrue []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, len(whenFalse))
	for i := range out {
		out[i] = b.MUX(sel, whenFalse[i], whenTrue[i])
	}
	return out
}

func allOnes(n int) []circuit.WireId {
	out := make([]circuit.WireId, n)
	for i := range out {
		out[i] = circuit.WireOne
	}
	return out
}

// Divu implements DIVU: unsigned division, with the RISC-V divide-by-zero
// convention (quotient = all ones, remainder = dividend) substituted via a
// MUX rather than a branch, so the circuit remains combinational (spec
// §4.3: "division by zero ... implemented by detecting 'divisor is all
// zero' and MUXing the DIVU results against the fault-mode constants").
func Divu(b *dedup.Builder, rs1, rs2 []circuit.WireId) []circuit.WireId {
	q, _ := UnsignedDivide(b, rs1, rs2)
	byZero := divisorIsZero(b, rs2)
	return muxWords(b, byZero, q, allOnes(len(rs1)))
}

// Remu implements REMU.
func Remu(b *dedup.Builder, rs1, rs2 []circuit.WireId) []circuit.WireId {
	_, r := UnsignedDivide(b, rs1, rs2)
	byZero := divisorIsZero(b, rs2)
	return muxWords(b, byZero, r, rs1)
}

// Div implements signed DIV: magnitudes are divided unsigned, then the
// quotient's sign is the XOR of the two operand signs (spec §4.3: "Signed
// DIV wraps absolute values around DIVU"). The INT_MIN / -1 fixpoint (spec
// §8, §9) falls out of AbsoluteValue's two's-complement overflow without
// special-casing: negating INT_MIN overflows back to INT_MIN.
func Div(b *dedup.Builder, rs1, rs2 []circuit.WireId) []circuit.WireId {
	magA, signA := AbsoluteValue(b, rs1)
	magB, signB := AbsoluteValue(b, rs2)
	qMag, _ := UnsignedDivide(b, magA, magB)
	resultNeg := b.XOR(signA, signB)
	q := muxWords(b, resultNeg, qMag, Negate(b, qMag))

	byZero := divisorIsZero(b, rs2)
	return muxWords(b, byZero, q, allOnes(len(rs1)))
}

// Rem implements signed REM: the remainder's sign follows the dividend's
// sign (spec §4.3).
func Rem(b *dedup.Builder, rs1, rs2 []circuit.WireId) []circuit.WireId {
	magA, signA := AbsoluteValue(b, rs1)
	magB, _ := AbsoluteValue(b, rs2)
	_, rMag := UnsignedDivide(b, magA, magB)
	r := muxWords(b, signA, rMag, Negate(b, rMag))

	byZero := divisorIsZero(b, rs2)
	return muxWords(b, byZero, r, rs1)
}
