package lower

import (
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/kernel"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/memtier"
)

// Lowerer threads the wire-level machine state (PC and 32 registers)
// through a fixed, public instruction stream, emitting gates at each step.
// Register x0 is never written: its wire vector stays whatever the caller
// bound it to (the constant-zero layout, spec §3).
type Lowerer struct {
	B    *dedup.Builder
	Mem  memtier.Tier
	PC   []circuit.WireId
	Regs [32][]circuit.WireId
}

// NewLowerer creates a Lowerer bound to the given initial PC/register wire
// vectors (typically the circuit's input boundary layout).
func NewLowerer(b *dedup.Builder, mem memtier.Tier, pc []circuit.WireId, regs [32][]circuit.WireId) *Lowerer {
	return &Lowerer{B: b, Mem: mem, PC: pc, Regs: regs}
}

func (l *Lowerer) writeback(rd uint32, value []circuit.WireId) {
	if rd == 0 {
		return
	}
	l.Regs[rd] = value
}

// pcPlus4 returns the PC advanced by the default instruction width.
func (l *Lowerer) pcPlus4() []circuit.WireId {
	return l.pcPlusN(4)
}

// pcPlusN advances the PC by n bytes; a fused two-instruction unit must
// advance by 8, since it consumes both original instruction words.
func (l *Lowerer) pcPlusN(n uint32) []circuit.WireId {
	sum, _ := kernel.Add32(l.B, l.PC, kernel.ConstWord(n))
	return sum
}

// Run dispatches a fixed, public instruction stream, applying the fusion
// peephole first and then lowering each resulting unit in order.
func (l *Lowerer) Run(program []uint32) {
	instrs := make([]instruction, len(program))
	for i, raw := range program {
		instrs[i] = decode(raw)
	}
	for _, u := range fuse(instrs) {
		l.step(u)
	}
}

// StepRaw decodes and lowers exactly one instruction word in isolation
// (no fusion peephole), applied directly to this Lowerer's current
// PC/register state. The Parallel Driver uses this to replay a batch
// member against a scratch Lowerer view once dependency analysis has
// established it is safe to do so concurrently with its batch-mates.
func (l *Lowerer) StepRaw(raw uint32) {
	l.stepInstruction(decode(raw))
}

// Snapshot returns a shallow copy of the current register file and PC,
// suitable for handing to a scratch Lowerer that must read this state
// without being able to mutate the original.
func (l *Lowerer) Snapshot() (pc []circuit.WireId, regs [32][]circuit.WireId) {
	return l.PC, l.Regs
}

func (l *Lowerer) step(u unit) {
	switch u.kind {
	case unitConst:
		l.writeback(u.rd, kernel.ConstWord(u.constValue))
		l.PC = l.pcPlusN(8)
	case unitPCRelConst:
		sum, _ := kernel.Add32(l.B, l.PC, kernel.ConstWord(u.constValue))
		l.writeback(u.rd, sum)
		l.PC = l.pcPlusN(8)
	case unitInstr:
		l.stepInstruction(u.in)
	}
}

func (l *Lowerer) stepInstruction(in instruction) {
	b := l.B
	switch in.Opcode {
	case opImm:
		l.lowerOpImm(in)
		l.PC = l.pcPlus4()
	case opReg:
		l.lowerOpReg(in)
		l.PC = l.pcPlus4()
	case opLUI:
		l.writeback(in.RD, kernel.ConstWord(uint32(in.ImmU)))
		l.PC = l.pcPlus4()
	case opAUIPC:
		sum, _ := kernel.Add32(b, l.PC, kernel.ConstWord(uint32(in.ImmU)))
		l.writeback(in.RD, sum)
		l.PC = l.pcPlus4()
	case opJAL:
		target, _ := kernel.Add32(b, l.PC, kernel.ConstWord(uint32(in.ImmJ)))
		l.writeback(in.RD, l.pcPlus4())
		l.PC = target
	case opJALR:
		raw, _ := kernel.Add32(b, l.Regs[in.RS1], kernel.ConstWord(uint32(in.ImmI)))
		raw[0] = circuit.WireZero // clear bit 0, per JALR's "set LSB to zero"
		l.writeback(in.RD, l.pcPlus4())
		l.PC = raw
	case opBranch:
		l.lowerBranch(in)
	case opLoad:
		l.lowerLoad(in)
		l.PC = l.pcPlus4()
	case opStore:
		l.lowerStore(in)
		l.PC = l.pcPlus4()
	case opSystem:
		// ECALL/EBREAK are markers only (see DESIGN.md): no architectural
		// state changes beyond the ordinary PC advance.
		l.PC = l.pcPlus4()
	default:
		l.PC = l.pcPlus4()
	}
}

func (l *Lowerer) lowerOpImm(in instruction) {
	b := l.B
	rs1 := l.Regs[in.RS1]
	imm := kernel.ConstWord(uint32(in.ImmI))
	switch in.Funct3 {
	case 0x0: // ADDI
		sum, _ := kernel.Add32(b, rs1, imm)
		l.writeback(in.RD, sum)
	case 0x1: // SLLI
		shamt := kernel.ConstWord(in.RS2) // imm[4:0] lives where RS2 does
		l.writeback(in.RD, kernel.ShiftLeftLogical(b, rs1, shamt))
	case 0x2: // SLTI
		lt := kernel.SignedLess(b, rs1, imm)
		l.writeback(in.RD, boolWord(b, lt))
	case 0x3: // SLTIU
		lt := kernel.UnsignedLess(b, rs1, imm)
		l.writeback(in.RD, boolWord(b, lt))
	case 0x4: // XORI
		l.writeback(in.RD, kernel.XorVec(b, rs1, imm))
	case 0x5: // SRLI / SRAI
		shamt := kernel.ConstWord(in.RS2)
		if in.Funct7 == 0x20 {
			l.writeback(in.RD, kernel.ShiftRightArithmetic(b, rs1, shamt))
		} else {
			l.writeback(in.RD, kernel.ShiftRightLogical(b, rs1, shamt))
		}
	case 0x6: // ORI
		l.writeback(in.RD, kernel.OrVec(b, rs1, imm))
	case 0x7: // ANDI
		l.writeback(in.RD, kernel.AndVec(b, rs1, imm))
	}
}

func (l *Lowerer) lowerOpReg(in instruction) {
	b := l.B
	rs1, rs2 := l.Regs[in.RS1], l.Regs[in.RS2]

	if in.Funct7 == 0x01 { // RV32M
		switch in.Funct3 {
		case 0x0:
			l.writeback(in.RD, kernel.Mul(b, rs1, rs2))
		case 0x1:
			l.writeback(in.RD, kernel.MulHigh(b, rs1, rs2))
		case 0x2:
			l.writeback(in.RD, kernel.MulHighSignedUnsigned(b, rs1, rs2))
		case 0x3:
			l.writeback(in.RD, kernel.MulHighUnsigned(b, rs1, rs2))
		case 0x4:
			l.writeback(in.RD, kernel.Div(b, rs1, rs2))
		case 0x5:
			l.writeback(in.RD, kernel.Divu(b, rs1, rs2))
		case 0x6:
			l.writeback(in.RD, kernel.Rem(b, rs1, rs2))
		case 0x7:
			l.writeback(in.RD, kernel.Remu(b, rs1, rs2))
		}
		return
	}

	switch in.Funct3 {
	case 0x0:
		if in.Funct7 == 0x20 {
			diff, _ := kernel.Subtract32(b, rs1, rs2)
			l.writeback(in.RD, diff)
		} else {
			sum, _ := kernel.Add32(b, rs1, rs2)
			l.writeback(in.RD, sum)
		}
	case 0x1:
		l.writeback(in.RD, kernel.ShiftLeftLogical(b, rs1, rs2))
	case 0x2:
		l.writeback(in.RD, boolWord(b, kernel.SignedLess(b, rs1, rs2)))
	case 0x3:
		l.writeback(in.RD, boolWord(b, kernel.UnsignedLess(b, rs1, rs2)))
	case 0x4:
		l.writeback(in.RD, kernel.XorVec(b, rs1, rs2))
	case 0x5:
		if in.Funct7 == 0x20 {
			l.writeback(in.RD, kernel.ShiftRightArithmetic(b, rs1, rs2))
		} else {
			l.writeback(in.RD, kernel.ShiftRightLogical(b, rs1, rs2))
		}
	case 0x6:
		l.writeback(in.RD, kernel.OrVec(b, rs1, rs2))
	case 0x7:
		l.writeback(in.RD, kernel.AndVec(b, rs1, rs2))
	}
}

// lowerBranch computes both successor PCs and MUXes between them (spec
// §9's mandatory fix: the source picked the taken target unconditionally;
// a correct branch must select pc+4 when the condition is false).
func (l *Lowerer) lowerBranch(in instruction) {
	b := l.B
	rs1, rs2 := l.Regs[in.RS1], l.Regs[in.RS2]

	var cond circuit.WireId
	switch in.Funct3 {
	case 0x0: // BEQ
		cond = kernel.Equal(b, rs1, rs2)
	case 0x1: // BNE
		cond = kernel.NotEqual(b, rs1, rs2)
	case 0x4: // BLT
		cond = kernel.SignedLess(b, rs1, rs2)
	case 0x5: // BGE
		cond = kernel.GreaterOrEqualSigned(b, rs1, rs2)
	case 0x6: // BLTU
		cond = kernel.UnsignedLess(b, rs1, rs2)
	case 0x7: // BGEU
		cond = kernel.GreaterOrEqualUnsigned(b, rs1, rs2)
	default:
		cond = circuit.WireZero
	}

	target, _ := kernel.Add32(b, l.PC, kernel.ConstWord(uint32(in.ImmB)))
	fallthroughPC := l.pcPlus4()
	l.PC = kernel.MuxVec(b, cond, fallthroughPC, target)
}

// boolWord widens a single condition wire to a 32-bit word (1 or 0), as
// SLT/SLTU/SLTI/SLTIU require.
func boolWord(b *dedup.Builder, cond circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, 32)
	out[0] = cond
	for i := 1; i < 32; i++ {
		out[i] = circuit.WireZero
	}
	return out
}

func addrWordIndex(addr []circuit.WireId) []circuit.WireId {
	return addr[2:]
}

func selectByte(b *dedup.Builder, word []circuit.WireId, addr []circuit.WireId) []circuit.WireId {
	b0, b1, b2, b3 := word[0:8], word[8:16], word[16:24], word[24:32]
	low := kernel.MuxVec(b, addr[0], b0, b1)
	high := kernel.MuxVec(b, addr[0], b2, b3)
	return kernel.MuxVec(b, addr[1], low, high)
}

func selectHalf(b *dedup.Builder, word []circuit.WireId, addr []circuit.WireId) []circuit.WireId {
	h0, h1 := word[0:16], word[16:32]
	return kernel.MuxVec(b, addr[1], h0, h1)
}

func signExtendByte(b *dedup.Builder, byt []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, 32)
	copy(out, byt)
	for i := 8; i < 32; i++ {
		out[i] = byt[7]
	}
	return out
}

func zeroExtendByte(byt []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, 32)
	copy(out, byt)
	for i := 8; i < 32; i++ {
		out[i] = circuit.WireZero
	}
	return out
}

func signExtendHalf(b *dedup.Builder, half []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, 32)
	copy(out, half)
	for i := 16; i < 32; i++ {
		out[i] = half[15]
	}
	return out
}

func zeroExtendHalf(half []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, 32)
	copy(out, half)
	for i := 16; i < 32; i++ {
		out[i] = circuit.WireZero
	}
	return out
}

func (l *Lowerer) lowerLoad(in instruction) {
	b := l.B
	addr, _ := kernel.Add32(b, l.Regs[in.RS1], kernel.ConstWord(uint32(in.ImmI)))
	word := l.Mem.Access(b, addrWordIndex(addr), kernel.ConstWord(0), circuit.WireZero)

	switch in.Funct3 {
	case 0x0: // LB
		l.writeback(in.RD, signExtendByte(b, selectByte(b, word, addr)))
	case 0x1: // LH
		l.writeback(in.RD, signExtendHalf(b, selectHalf(b, word, addr)))
	case 0x2: // LW
		l.writeback(in.RD, word)
	case 0x4: // LBU
		l.writeback(in.RD, zeroExtendByte(selectByte(b, word, addr)))
	case 0x5: // LHU
		l.writeback(in.RD, zeroExtendHalf(selectHalf(b, word, addr)))
	}
}

// lowerStore handles SW in a single tier access. SB/SH must first read the
// current word to merge the new byte/half into it, then write the merged
// word back -- two tier accesses instead of one (spec §9's resolved open
// question: narrow stores cost double the memory witness budget of a
// word store, and the pre-scan that sizes the Secure tier's witness wires
// must count them accordingly).
func (l *Lowerer) lowerStore(in instruction) {
	b := l.B
	addr, _ := kernel.Add32(b, l.Regs[in.RS1], kernel.ConstWord(uint32(in.ImmI)))
	wordIdx := addrWordIndex(addr)
	rs2 := l.Regs[in.RS2]

	switch in.Funct3 {
	case 0x2: // SW
		l.Mem.Access(b, wordIdx, rs2, circuit.WireOne)
	case 0x0: // SB
		old := l.Mem.Access(b, wordIdx, kernel.ConstWord(0), circuit.WireZero)
		merged := mergeByte(b, old, rs2[:8], addr)
		l.Mem.Access(b, wordIdx, merged, circuit.WireOne)
	case 0x1: // SH
		old := l.Mem.Access(b, wordIdx, kernel.ConstWord(0), circuit.WireZero)
		merged := mergeHalf(b, old, rs2[:16], addr)
		l.Mem.Access(b, wordIdx, merged, circuit.WireOne)
	}
}

func mergeByte(b *dedup.Builder, word, newByte []circuit.WireId, addr []circuit.WireId) []circuit.WireId {
	out := make([]circuit.WireId, 32)
	copy(out, word)
	for slot := 0; slot < 4; slot++ {
		isTarget := kernel.Equal(b, addr[0:2], kernel.ConstWord(uint32(slot))[0:2])
		for i := 0; i < 8; i++ {
			out[slot*8+i] = b.MUX(isTarget, out[slot*8+i], newByte[i])
		}
	}
	return out
}

func mergeHalf(b *dedup.Builder, word, newHalf []circuit.WireId, addr []circuit.WireId) []circuit.WireId {
	isHigh := addr[1]
	low := kernel.MuxVec(b, isHigh, newHalf, word[0:16])
	high := kernel.MuxVec(b, isHigh, word[16:32], newHalf)
	out := make([]circuit.WireId, 32)
	copy(out[0:16], low)
	copy(out[16:32], high)
	return out
}
