package lower

// unitKind distinguishes a fused multi-instruction shortcut from an
// ordinary single-instruction lowering step.
type unitKind int

const (
	unitInstr unitKind = iota
	// unitConst is LUI+ADDI folded into one constant materialization: both
	// halves of the 32-bit value are compile-time known (neither
	// instruction reads a register), so the fused form costs zero gates
	// instead of one LUI writeback plus one 32-bit adder.
	unitConst
	// unitPCRelConst is AUIPC+ADDI folded into a single PC-relative add:
	// the two immediates are summed in Go once, so the fused form costs
	// one Add32 instead of two.
	unitPCRelConst
)

type unit struct {
	kind       unitKind
	rd         uint32
	constValue uint32
	in         instruction
}

// fuse recognizes LUI+ADDI and AUIPC+ADDI two-instruction windows (spec
// §9's fusion peephole) and replaces each matched pair with one combined
// unit. ADD+ADD and SHIFT+ANDI fusion are not implemented (see
// DESIGN.md); those pairs simply fall through as two ordinary units.
func fuse(instrs []instruction) []unit {
	units := make([]unit, 0, len(instrs))
	for i := 0; i < len(instrs); i++ {
		cur := instrs[i]
		if i+1 < len(instrs) {
			next := instrs[i+1]
			if isAddiOnto(next, cur.RD) {
				switch cur.Opcode {
				case opLUI:
					value := uint32(cur.ImmU) + uint32(next.ImmI)
					units = append(units, unit{kind: unitConst, rd: next.RD, constValue: value})
					i++
					continue
				case opAUIPC:
					value := uint32(cur.ImmU) + uint32(next.ImmI)
					units = append(units, unit{kind: unitPCRelConst, rd: next.RD, constValue: value})
					i++
					continue
				}
			}
		}
		units = append(units, unit{kind: unitInstr, in: cur})
	}
	return units
}

// isAddiOnto reports whether in is "ADDI rd, rd, imm" reading and writing
// exactly the register that the preceding LUI/AUIPC just wrote (so its
// value is fully determined by the two immediates, not by any other live
// register, and the fused unit still ends up writing that one register).
// Both the read and the write side must match rd: requiring only RS1==rd
// would also match "ADDI x_b, x_a, imm" for some other x_b, silently
// dropping the first half's writeback to x_a -- the most common trigger
// being "LUI x0, u" (a legal no-op) immediately followed by an ordinary
// "ADDI rd, x0, imm" loading a small constant.
func isAddiOnto(in instruction, rd uint32) bool {
	return in.Opcode == opImm && in.Funct3 == 0x0 && in.RS1 == rd && in.RD == rd
}
