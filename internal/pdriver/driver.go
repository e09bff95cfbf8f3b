package pdriver

import (
	"github.com/tklauser/numcpus"
	"golang.org/x/sync/errgroup"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/kernel"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/log"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/lower"
)

var driverLog = log.Default().Module("pdriver")

// Driver replays a fixed instruction stream through a Lowerer the way
// Lowerer.Run does, except that each ALU run between barriers is split into
// dependency waves and each wave's members are lowered concurrently by
// NumWorkers goroutines, each against its own worker-local gate buffer
// (dedup.NewBufferedBuilder over a circuit.LocalBuffer). Buffers are
// flushed onto the shared arena in ascending worker index once a wave
// completes, so the final gate order depends only on (run, wave, worker
// index, per-worker emission order) -- never on goroutine completion
// timing.
type Driver struct {
	NumWorkers int

	EnableDedup bool
	EnableCache bool
}

// NewDriver creates a Driver with NumWorkers defaulted to the host's
// online CPU count (numcpus.GetOnline), falling back to 1 if that cannot
// be determined.
func NewDriver(enableDedup, enableCache bool) *Driver {
	n, err := numcpus.GetOnline()
	if err != nil || n < 1 {
		n = 1
	}
	return &Driver{NumWorkers: n, EnableDedup: enableDedup, EnableCache: enableCache}
}

// Run lowers program against l, parallelizing ALU-family runs and falling
// back to sequential StepRaw calls at every barrier instruction.
func (d *Driver) Run(l *lower.Lowerer, program []uint32) {
	for _, seg := range segments(program) {
		if seg.isBarrier {
			l.StepRaw(program[seg.start])
			continue
		}
		d.runSegment(l, program, seg)
	}
}

func (d *Driver) runSegment(l *lower.Lowerer, program []uint32, seg segment) {
	n := seg.end - seg.start
	if n == 0 {
		return
	}
	basePC := l.PC
	waves := batches(program, seg)

	driverLog.Debug("scheduling ALU run", "instructions", n, "waves", len(waves), "workers", d.NumWorkers)

	for _, wave := range waves {
		d.runWave(l, program, basePC, seg.start, wave)
	}

	// The run's net effect on PC is a compile-time-known constant offset
	// (every member only ever advances PC by 4); collapse it into one add
	// instead of chaining n sequential pcPlus4 calls.
	l.PC, _ = kernel.Add32(l.B, basePC, kernel.ConstWord(uint32(4*n)))
}

func (d *Driver) runWave(l *lower.Lowerer, program []uint32, basePC []circuit.WireId, runStart int, wave []int) {
	if len(wave) == 0 {
		return
	}
	numWorkers := d.NumWorkers
	if numWorkers > len(wave) {
		numWorkers = len(wave)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	baseRegs := l.Regs
	type writeback struct {
		rd    uint32
		value []circuit.WireId
	}
	results := make([]writeback, len(wave))
	buffers := make([]*circuit.LocalBuffer, numWorkers)
	for w := range buffers {
		buffers[w] = circuit.NewLocalBuffer(l.B.Arena)
	}

	var g errgroup.Group
	for w := 0; w < numWorkers; w++ {
		w := w
		g.Go(func() error {
			wb := dedup.NewBufferedBuilder(buffers[w], d.EnableDedup, d.EnableCache)
			for i := w; i < len(wave); i += numWorkers {
				instrIdx := wave[i]
				offset := instrIdx - runStart
				pc, _ := kernel.Add32(wb, basePC, kernel.ConstWord(uint32(4*offset)))

				scratch := lower.NewLowerer(wb, nil, pc, baseRegs)
				scratch.StepRaw(program[instrIdx])

				cls := lower.Classify(program[instrIdx])
				if cls.WritesRD && cls.RD != 0 {
					results[i] = writeback{rd: cls.RD, value: scratch.Regs[cls.RD]}
				}
			}
			return nil
		})
	}
	_ = g.Wait() // worker bodies never return an error

	for w := 0; w < numWorkers; w++ {
		l.B.Arena.AppendBatch(buffers[w].Gates())
	}
	for _, r := range results {
		if r.value != nil {
			l.Regs[r.rd] = r.value
		}
	}
}
