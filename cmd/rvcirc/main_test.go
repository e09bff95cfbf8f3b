package main

import (
	"testing"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/config"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/elfload"
)

func TestBuildCircuitSequentialAndParallelAgree(t *testing.T) {
	prog := &elfload.Program{
		EntryPC: 0,
		Instructions: []uint32{
			0x00500093, // ADDI x1, x0, 5
			0x00700113, // ADDI x2, x0, 7
			0x002081b3, // ADD x3, x1, x2
		},
	}

	seqCfg := config.Default()
	seqCfg.EnableParallel = false
	bSeq, seqLowerer, err := buildCircuit(prog, seqCfg)
	if err != nil {
		t.Fatal(err)
	}

	parCfg := config.Default()
	parCfg.EnableParallel = true
	bPar, parLowerer, err := buildCircuit(prog, parCfg)
	if err != nil {
		t.Fatal(err)
	}

	seqAssignment := baseAssignment(bSeq.Arena)
	seqResult := evalCircuit(bSeq.Arena, seqAssignment)
	got := bitsToWord(seqResult, seqLowerer.Regs[3])

	parAssignment := baseAssignment(bPar.Arena)
	parResult := evalCircuit(bPar.Arena, parAssignment)
	want := bitsToWord(parResult, parLowerer.Regs[3])

	if got != want {
		t.Fatalf("x3: sequential=%d parallel=%d", got, want)
	}
	if got != 12 {
		t.Fatalf("x3: got %d, want 12", got)
	}
}

func baseAssignment(a *circuit.Arena) []bool {
	assignment := make([]bool, a.NumInputs())
	assignment[circuit.WireOne] = true
	return assignment
}
