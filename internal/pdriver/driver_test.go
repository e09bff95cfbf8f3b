package pdriver

import (
	"testing"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/lower"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/memtier"
)

func newFullStateBuilder(t *testing.T) (*dedup.Builder, []circuit.WireId, [32][]circuit.WireId) {
	t.Helper()
	a, err := circuit.NewArena(circuit.FixedOverheadBits, 32)
	if err != nil {
		t.Fatal(err)
	}
	b := dedup.NewBuilder(a, true, true)

	pc := make([]circuit.WireId, circuit.PCBits)
	for i := range pc {
		pc[i] = circuit.WireId(circuit.PCWireBase + i)
	}
	var regs [32][]circuit.WireId
	for r := 0; r < circuit.NumRegisters; r++ {
		w := make([]circuit.WireId, circuit.RegisterBits)
		for i := range w {
			w[i] = circuit.WireId(circuit.RegisterWireOffset(r, i))
		}
		regs[r] = w
	}
	return b, pc, regs
}

func evalCircuit(b *dedup.Builder, assignment []bool) []bool {
	gates := b.Arena.Gates()
	for len(assignment) < int(b.Arena.NextWireID()) {
		assignment = append(assignment, false)
	}
	for _, g := range gates {
		var v bool
		switch g.Kind {
		case circuit.KindAND:
			v = assignment[g.Left] && assignment[g.Right]
		case circuit.KindXOR:
			v = assignment[g.Left] != assignment[g.Right]
		}
		assignment[g.Output] = v
	}
	return assignment
}

func wordToBits(v uint32) []bool {
	out := make([]bool, 32)
	for i := range out {
		out[i] = (v>>uint(i))&1 == 1
	}
	return out
}

func bitsToWord(assignment []bool, wires []circuit.WireId) uint32 {
	var v uint32
	for i, w := range wires {
		if assignment[w] {
			v |= 1 << uint(i)
		}
	}
	return v
}

func encodeR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(imm uint32, rs1, funct3, rd, opcode uint32) uint32 {
	return (imm&0xFFF)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func baseAssignment(numInputs int) []bool {
	a := make([]bool, numInputs)
	a[1] = true
	return a
}

const (
	opImm = 0x13
	opReg = 0x33
)

// TestIndependentAddsScheduleIntoOneWave: x4=x1+x2 and x5=x1+x3 share a
// read-only operand (x1) but write disjoint destinations, so dependency
// analysis should place them in the same wave.
func TestIndependentAddsScheduleIntoOneWave(t *testing.T) {
	program := []uint32{
		encodeR(0x00, 2, 1, 0x0, 4, opReg), // ADD x4, x1, x2
		encodeR(0x00, 3, 1, 0x0, 5, opReg), // ADD x5, x1, x3
	}
	segs := segments(program)
	if len(segs) != 1 || segs[0].isBarrier {
		t.Fatalf("expected one ALU run, got %+v", segs)
	}
	waves := batches(program, segs[0])
	if len(waves) != 1 || len(waves[0]) != 2 {
		t.Fatalf("expected both independent adds in a single wave, got %+v", waves)
	}
}

// TestChainedAddsScheduleIntoTwoWaves: x4 depends on x1 written by the
// preceding instruction, a genuine RAW hazard that must serialize.
func TestChainedAddsScheduleIntoTwoWaves(t *testing.T) {
	program := []uint32{
		encodeI(5, 0, 0x0, 1, opImm),       // ADDI x1, x0, 5
		encodeR(0x00, 2, 1, 0x0, 4, opReg), // ADD x4, x1, x2
	}
	segs := segments(program)
	waves := batches(program, segs[0])
	if len(waves) != 2 {
		t.Fatalf("expected a RAW hazard to force two waves, got %+v", waves)
	}
}

// TestParallelDriverMatchesSequentialLowering checks that replaying a
// mixed ALU/barrier program through Driver.Run produces the same final
// register and PC values as Lowerer.Run on a fresh, identically-keyed
// circuit -- the parallel schedule must be semantically transparent.
func TestParallelDriverMatchesSequentialLowering(t *testing.T) {
	program := []uint32{
		encodeI(5, 0, 0x0, 1, opImm),       // ADDI x1, x0, 5
		encodeI(7, 0, 0x0, 2, opImm),       // ADDI x2, x0, 7
		encodeR(0x00, 2, 1, 0x0, 3, opReg), // ADD x3, x1, x2
		encodeR(0x00, 1, 2, 0x0, 4, opReg), // ADD x4, x2, x1
		encodeI(1, 3, 0x0, 3, opImm),       // ADDI x3, x3, 1 (RAW on x3)
	}

	bSeq, pcSeq, regsSeq := newFullStateBuilder(t)
	seqLowerer := lower.NewLowerer(bSeq, memtier.NewUltra(nil), pcSeq, regsSeq)
	seqLowerer.Run(program)

	bPar, pcPar, regsPar := newFullStateBuilder(t)
	parLowerer := lower.NewLowerer(bPar, memtier.NewUltra(nil), pcPar, regsPar)
	d := &Driver{NumWorkers: 4, EnableDedup: true, EnableCache: true}
	d.Run(parLowerer, program)

	full := baseAssignment(circuit.FixedOverheadBits)
	seqResult := evalCircuit(bSeq, append([]bool(nil), full...))
	parResult := evalCircuit(bPar, append([]bool(nil), full...))

	for r := 1; r <= 4; r++ {
		got := bitsToWord(parResult, parLowerer.Regs[r])
		want := bitsToWord(seqResult, seqLowerer.Regs[r])
		if got != want {
			t.Fatalf("x%d: parallel=%#x sequential=%#x", r, got, want)
		}
	}
	if gotPC, wantPC := bitsToWord(parResult, parLowerer.PC), bitsToWord(seqResult, seqLowerer.PC); gotPC != wantPC {
		t.Fatalf("PC: parallel=%#x sequential=%#x", gotPC, wantPC)
	}
}
