package lower

// CountMemoryAccesses pre-scans a fixed instruction stream and returns how
// many internal/memtier.Tier.Access calls lowering it will make: one per
// load or word store, two per narrow store (SB/SH), since lowerStore must
// read the current word before merging in the new byte/half (see
// lowerStore's doc comment). The Secure tier's witness-wire budget
// (memtier.SecureWitnessBits) must be sized from this count before
// lowering begins, since every sibling-path wire has to exist as a static
// input before any gate referencing it can be emitted.
func CountMemoryAccesses(program []uint32) int {
	n := 0
	for _, raw := range program {
		in := decode(raw)
		switch in.Opcode {
		case opLoad:
			n++
		case opStore:
			if in.Funct3 == 0x2 { // SW
				n++
			} else { // SB, SH
				n += 2
			}
		}
	}
	return n
}
