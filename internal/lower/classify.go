package lower

// Classification is the subset of a decoded instruction's fields the
// Parallel Driver's dependency analysis needs: which registers it reads
// and writes, and whether it is safe to schedule concurrently with other
// register-only instructions (ALU family) as opposed to one that touches
// memory, PC control flow, or the environment (a scheduling barrier, spec
// §4.6: "loads, stores, branches, and jumps serialize the batch").
type Classification struct {
	RD, RS1, RS2   uint32
	WritesRD       bool
	ReadsRS1       bool
	ReadsRS2       bool
	IsBarrier      bool
}

// Classify decodes raw and reports its register dependencies and whether
// it must act as a batch boundary.
func Classify(raw uint32) Classification {
	in := decode(raw)
	c := Classification{RD: in.RD, RS1: in.RS1, RS2: in.RS2}

	switch in.Opcode {
	case opImm:
		c.WritesRD, c.ReadsRS1 = true, true
	case opReg:
		c.WritesRD, c.ReadsRS1, c.ReadsRS2 = true, true, true
	case opLUI:
		c.WritesRD = true
	case opAUIPC:
		c.WritesRD = true // reads the running PC, not a register
	default:
		c.IsBarrier = true // load, store, branch, jump, system
	}
	return c
}
