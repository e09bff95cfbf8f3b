// Package lower translates a fixed, public RV32IM instruction stream into
// gates. The instruction words themselves are compile-time Go values, not
// circuit wires: only the architectural state they operate on (registers,
// PC, memory) is private and carried on wires. This mirrors how a decoder
// over a fixed instruction encoding extracts opcode/funct/immediate
// fields with shifts and masks (see DESIGN.md); here those fields select
// which kernel to emit in Go, rather than which value a CPU executes at
// runtime.
package lower

const (
	opLoad   = 0x03
	opImm    = 0x13
	opAUIPC  = 0x17
	opStore  = 0x23
	opReg    = 0x33
	opLUI    = 0x37
	opBranch = 0x63
	opJALR   = 0x67
	opJAL    = 0x6F
	opSystem = 0x73
)

// instruction holds the decoded fields of one RV32IM word.
type instruction struct {
	Raw    uint32
	Opcode uint32
	RD     uint32
	Funct3 uint32
	RS1    uint32
	RS2    uint32
	Funct7 uint32
	ImmI   int32
	ImmS   int32
	ImmB   int32
	ImmU   int32
	ImmJ   int32
}

func bits(v uint32, hi, lo uint32) uint32 {
	return (v >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func signExtend(v uint32, width uint32) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift
}

func decode(raw uint32) instruction {
	in := instruction{
		Raw:    raw,
		Opcode: bits(raw, 6, 0),
		RD:     bits(raw, 11, 7),
		Funct3: bits(raw, 14, 12),
		RS1:    bits(raw, 19, 15),
		RS2:    bits(raw, 24, 20),
		Funct7: bits(raw, 31, 25),
	}

	in.ImmI = signExtend(bits(raw, 31, 20), 12)

	sImm := bits(raw, 31, 25)<<5 | bits(raw, 11, 7)
	in.ImmS = signExtend(sImm, 12)

	bImm := bits(raw, 31, 31)<<12 | bits(raw, 7, 7)<<11 | bits(raw, 30, 25)<<5 | bits(raw, 11, 8)<<1
	in.ImmB = signExtend(bImm, 13)

	in.ImmU = int32(raw &^ 0xFFF)

	jImm := bits(raw, 31, 31)<<20 | bits(raw, 19, 12)<<12 | bits(raw, 20, 20)<<11 | bits(raw, 30, 21)<<1
	in.ImmJ = signExtend(jImm, 21)

	return in
}
