// Package elfload supplies a RISC-V program (entry PC and instruction
// words) from a compiled RV32IM ELF binary, using only the standard
// library's debug/elf: no example repo in the corpus carries an ELF
// parser, and debug/elf already expresses exactly the narrow read-only
// subset needed here (load the PT_LOAD segments, read the entry point).
package elfload

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
)

// Program is a flat RISC-V program ready for internal/lower: a sequence
// of instruction words in execution order, starting at EntryPC.
type Program struct {
	EntryPC      uint32
	Instructions []uint32
}

// Load parses the RV32IM ELF file at path and extracts its loadable text
// as a sequence of 32-bit instruction words.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfload: opening %s: %w", path, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("elfload: %s is not a 32-bit ELF (class %v)", path, f.Class)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("elfload: %s is not built for RISC-V (machine %v)", path, f.Machine)
	}

	var words []uint32
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Flags&elf.PF_X == 0 {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("elfload: reading executable segment: %w", err)
		}
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("elfload: executable segment size %d is not word-aligned", len(data))
		}
		for i := 0; i+4 <= len(data); i += 4 {
			words = append(words, binary.LittleEndian.Uint32(data[i:i+4]))
		}
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("elfload: %s has no executable PT_LOAD segments", path)
	}

	return &Program{EntryPC: uint32(f.Entry), Instructions: words}, nil
}
