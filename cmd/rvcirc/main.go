// Command rvcirc compiles a RISC-V ELF binary into a boolean gate circuit.
//
// Usage:
//
//	rvcirc compile --elf prog.elf --out prog.gates [--config rvcirc.yaml] [--format flat|layered] [--compress]
//	rvcirc verify-equivalence --elf prog.elf [--config rvcirc.yaml]
//	rvcirc bench --elf prog.elf [--config rvcirc.yaml]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/config"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/dedup"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/elfload"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/gateio"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/log"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/lower"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/memtier"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/pdriver"
	"github.com/RhettCreighton/riscv-compiler-sub000/internal/rvref"
)

var cliLog = log.Default().Module("cmd")

func main() {
	app := &cli.App{
		Name:  "rvcirc",
		Usage: "compile RV32IM programs into boolean gate circuits",
		Commands: []*cli.Command{
			compileCommand(),
			verifyEquivalenceCommand(),
			benchCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		cliLog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "elf", Required: true, Usage: "path to the RV32IM ELF binary"},
		&cli.StringFlag{Name: "config", Usage: "path to a YAML config file (defaults applied otherwise)"},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

// buildCircuit lowers an elfload.Program into a fresh arena and builder,
// choosing the memory tier and scheduling strategy (parallel driver vs.
// sequential Lowerer.Run) per cfg.
func buildCircuit(prog *elfload.Program, cfg *config.Config) (*dedup.Builder, *lower.Lowerer, error) {
	var numInputs int
	if cfg.MemoryTier == config.TierSecure {
		numAccesses := lower.CountMemoryAccesses(prog.Instructions)
		numInputs = circuit.FixedOverheadBits + memtier.SecureWitnessBits(numAccesses)
	} else {
		numInputs = circuit.InputBoundary(cfg.MemoryWords * 4)
	}

	arena, err := circuit.NewArena(numInputs, circuit.FixedOverheadBits)
	if err != nil {
		return nil, nil, fmt.Errorf("rvcirc: %w", err)
	}
	b := dedup.NewBuilder(arena, cfg.EnableDeduplication, cfg.EnableCaching)

	pc := make([]circuit.WireId, circuit.PCBits)
	for i := range pc {
		pc[i] = circuit.WireId(circuit.PCWireBase + i)
	}
	var regs [32][]circuit.WireId
	for r := 0; r < circuit.NumRegisters; r++ {
		w := make([]circuit.WireId, circuit.RegisterBits)
		for i := range w {
			if r == 0 {
				w[i] = circuit.WireZero // x0 is bound to the constant-zero wire
				continue
			}
			w[i] = circuit.WireId(circuit.RegisterWireOffset(r, i))
		}
		regs[r] = w
	}

	mem := buildMemoryTier(cfg, prog)
	l := lower.NewLowerer(b, mem, pc, regs)

	if cfg.EnableParallel {
		numWorkers := cfg.NumThreads
		d := pdriver.NewDriver(cfg.EnableDeduplication, cfg.EnableCaching)
		if numWorkers > 0 {
			d.NumWorkers = numWorkers
		}
		d.Run(l, prog.Instructions)
	} else {
		l.Run(prog.Instructions)
	}

	return b, l, nil
}

func buildMemoryTier(cfg *config.Config, prog *elfload.Program) memtier.Tier {
	memBase := circuit.MemoryWireBase()
	words := func(n int) [][]circuit.WireId {
		out := make([][]circuit.WireId, n)
		for w := 0; w < n; w++ {
			word := make([]circuit.WireId, 32)
			for bit := range word {
				word[bit] = circuit.WireId(memBase + w*32 + bit)
			}
			out[w] = word
		}
		return out
	}

	switch cfg.MemoryTier {
	case config.TierUltra:
		return memtier.NewUltra(words(8))
	case config.TierSecure:
		numAccesses := lower.CountMemoryAccesses(prog.Instructions)
		return memtier.NewSecure(memBase, numAccesses)
	default:
		return memtier.NewSimple(words(256))
	}
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:  "compile",
		Usage: "compile an ELF program into a gate-list file",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "out", Required: true, Usage: "output gate-list path"},
			&cli.StringFlag{Name: "format", Value: "flat", Usage: "flat or layered"},
			&cli.BoolFlag{Name: "compress", Usage: "zstd-compress the output"},
		),
		Action: func(c *cli.Context) error {
			prog, err := elfload.Load(c.String("elf"))
			if err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			b, _, err := buildCircuit(prog, cfg)
			if err != nil {
				return err
			}

			out, format, compress := c.String("out"), c.String("format"), c.Bool("compress")
			cliLog.Info("compiled circuit", "gates", b.Arena.NumGates(), "format", format)

			switch format {
			case "layered":
				return gateio.WriteLayeredFile(out, b.Arena, compress)
			default:
				return gateio.WriteFlatFile(out, b.Arena, compress)
			}
		},
	}
}

func verifyEquivalenceCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify-equivalence",
		Usage: "check the compiled circuit's architectural state matches a host interpreter, starting from all-zero registers",
		Flags: commonFlags(),
		Action: func(c *cli.Context) error {
			prog, err := elfload.Load(c.String("elf"))
			if err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			b, l, err := buildCircuit(prog, cfg)
			if err != nil {
				return err
			}

			assignment := make([]bool, circuit.FixedOverheadBits)
			assignment[circuit.WireOne] = true
			result := evalCircuit(b.Arena, assignment)

			ref := rvref.NewCPU(cfg.MemoryWords * 4)
			ref.LoadProgram(prog.Instructions, 0)
			ref.Run()

			mismatches := 0
			for r := 1; r < circuit.NumRegisters; r++ {
				got := bitsToWord(result, l.Regs[r])
				if got != ref.Regs[r] {
					cliLog.Error("register mismatch", "reg", r, "circuit", got, "reference", ref.Regs[r])
					mismatches++
				}
			}
			if gotPC := bitsToWord(result, l.PC); gotPC != ref.PC {
				cliLog.Error("PC mismatch", "circuit", gotPC, "reference", ref.PC)
				mismatches++
			}
			if mismatches > 0 {
				return fmt.Errorf("rvcirc: %d mismatches against the reference interpreter", mismatches)
			}
			cliLog.Info("circuit matches reference interpreter")
			return nil
		},
	}
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "compile once sequentially and once with the parallel driver, reporting wall-clock time",
		Flags: commonFlags(),
		Action: func(c *cli.Context) error {
			prog, err := elfload.Load(c.String("elf"))
			if err != nil {
				return err
			}
			base, err := loadConfig(c)
			if err != nil {
				return err
			}

			sequential := *base
			sequential.EnableParallel = false
			parallel := *base
			parallel.EnableParallel = true

			for name, cfg := range map[string]*config.Config{"sequential": &sequential, "parallel": &parallel} {
				start := time.Now()
				b, _, err := buildCircuit(prog, cfg)
				if err != nil {
					return err
				}
				cliLog.Info("bench result", "mode", name, "elapsed", time.Since(start), "gates", b.Arena.NumGates())
			}
			return nil
		},
	}
}

func evalCircuit(a *circuit.Arena, assignment []bool) []bool {
	for len(assignment) < int(a.NextWireID()) {
		assignment = append(assignment, false)
	}
	for _, g := range a.Gates() {
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

func bitsToWord(assignment []bool, wires []circuit.WireId) uint32 {
	var v uint32
	for i, w := range wires {
		if assignment[w] {
			v |= 1 << uint(i)
		}
	}
	return v
}

func regWires(r int) []circuit.WireId {
	w := make([]circuit.WireId, circuit.RegisterBits)
	for i := range w {
		w[i] = circuit.WireId(circuit.RegisterWireOffset(r, i))
	}
	return w
}

func pcWires() []circuit.WireId {
	w := make([]circuit.WireId, circuit.PCBits)
	for i := range w {
		w[i] = circuit.WireId(circuit.PCWireBase + i)
	}
	return w
}
