package elfload

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// buildMinimalRISCVELF32 hand-assembles the smallest ELF32/RISC-V
// executable debug/elf will parse: one header, one PT_LOAD|PF_X program
// header, and the raw instruction bytes immediately following it.
func buildMinimalRISCVELF32(t *testing.T, instructions []uint32, entry uint32) []byte {
	t.Helper()
	const (
		ehsize = 52
		phsize = 32
	)
	data := make([]byte, 0, ehsize+phsize+len(instructions)*4)

	text := make([]byte, len(instructions)*4)
	for i, w := range instructions {
		binary.LittleEndian.PutUint32(text[i*4:], w)
	}

	offset := uint32(ehsize + phsize)

	// e_ident
	ident := [16]byte{0x7f, 'E', 'L', 'F', 1, 1, 1, 0}
	data = append(data, ident[:]...)

	put16 := func(v uint16) { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); data = append(data, b...) }
	put32 := func(v uint32) { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); data = append(data, b...) }

	put16(2)      // e_type = ET_EXEC
	put16(243)    // e_machine = EM_RISCV
	put32(1)      // e_version
	put32(entry)  // e_entry
	put32(ehsize) // e_phoff
	put32(0)      // e_shoff
	put32(0)      // e_flags
	put16(ehsize) // e_ehsize
	put16(phsize) // e_phentsize
	put16(1)      // e_phnum
	put16(0)      // e_shentsize
	put16(0)      // e_shnum
	put16(0)      // e_shstrndx

	// Elf32_Phdr
	put32(1)                 // p_type = PT_LOAD
	put32(offset)             // p_offset
	put32(entry)              // p_vaddr
	put32(entry)              // p_paddr
	put32(uint32(len(text))) // p_filesz
	put32(uint32(len(text))) // p_memsz
	put32(5)                 // p_flags = PF_X|PF_R
	put32(4)                 // p_align

	data = append(data, text...)
	return data
}

func TestLoadExtractsInstructionsInOrder(t *testing.T) {
	instrs := []uint32{0x00000013, 0x00100093, 0x00208133} // NOP, ADDI, ADD
	raw := buildMinimalRISCVELF32(t, instrs, 0x1000)

	path := filepath.Join(t.TempDir(), "prog.elf")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	prog, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prog.EntryPC != 0x1000 {
		t.Fatalf("EntryPC: got %#x, want 0x1000", prog.EntryPC)
	}
	if len(prog.Instructions) != len(instrs) {
		t.Fatalf("Instructions: got %d words, want %d", len(prog.Instructions), len(instrs))
	}
	for i, want := range instrs {
		if prog.Instructions[i] != want {
			t.Fatalf("instruction %d: got %#x, want %#x", i, prog.Instructions[i], want)
		}
	}
}

func TestLoadRejectsNonRISCV(t *testing.T) {
	raw := buildMinimalRISCVELF32(t, []uint32{0}, 0)
	raw[18] = 0x3e // e_machine low byte -> EM_X86_64, not RISC-V

	path := filepath.Join(t.TempDir(), "prog.elf")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error loading a non-RISC-V ELF")
	}
}
