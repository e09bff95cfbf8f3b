// Package gateio emits a circuit.Arena's gate list to the flat and
// layered on-disk text formats, optionally zstd-compressed
// (github.com/klauspost/compress/zstd) and guarded by an advisory file
// lock (github.com/gofrs/flock) so two compiler processes never interleave
// writes to the same output path -- the same pairing the teacher uses for
// its own chain-data snapshot files.
package gateio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
)

// WriteFlat writes the flat gate-list format: a three-line header
// followed by one "<id> <left> <right> <output> <AND|XOR>" line per gate,
// in append order.
func WriteFlat(w io.Writer, a *circuit.Arena) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "CIRCUIT_INPUTS %d\n", a.NumInputs())
	fmt.Fprintf(bw, "CIRCUIT_OUTPUTS %d\n", a.NumOutputs())
	fmt.Fprintf(bw, "CIRCUIT_GATES %d\n", a.NumGates())
	for id, g := range a.Gates() {
		fmt.Fprintf(bw, "%d %d %d %d %s\n", id, g.Left, g.Right, g.Output, g.Kind)
	}
	return bw.Flush()
}

// WriteLayered writes the layered gate-list format: the same header, then
// one `layer <id> <count>` block per layer, each followed by that many
// "<left> <right> <output> <kind_code>" lines. A gate's layer is
// 1 + max(layer_of(left), layer_of(right)); input wires sit at layer 0.
func WriteLayered(w io.Writer, a *circuit.Arena) error {
	layers := Layer(a)

	byLayer := make(map[int][]circuit.Gate)
	maxLayer := 0
	for _, g := range a.Gates() {
		l := layers[g.Output]
		byLayer[l] = append(byLayer[l], g)
		if l > maxLayer {
			maxLayer = l
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "CIRCUIT_INPUTS %d\n", a.NumInputs())
	fmt.Fprintf(bw, "CIRCUIT_OUTPUTS %d\n", a.NumOutputs())
	fmt.Fprintf(bw, "CIRCUIT_GATES %d\n", a.NumGates())
	for l := 1; l <= maxLayer; l++ {
		gates := byLayer[l]
		fmt.Fprintf(bw, "layer %d %d\n", l, len(gates))
		for _, g := range gates {
			fmt.Fprintf(bw, "%d %d %d %d\n", g.Left, g.Right, g.Output, int(g.Kind))
		}
	}
	return bw.Flush()
}

// Layer computes the longest-input-path layer of every wire id up to the
// arena's current wire count: input wires are layer 0, and a gate's
// output is 1 + max(layer of its two operands). Gates are processed in
// append order, which is always a valid topological order since an
// arena's invariants guarantee a gate's inputs are allocated before its
// output.
func Layer(a *circuit.Arena) []int {
	layers := make([]int, int(a.NextWireID()))
	for _, g := range a.Gates() {
		l := layers[g.Left]
		if layers[g.Right] > l {
			l = layers[g.Right]
		}
		layers[g.Output] = l + 1
	}
	return layers
}

// WriteFlatFile writes the flat format to path, taking an exclusive file
// lock for the duration and zstd-compressing the output when compress is
// true.
func WriteFlatFile(path string, a *circuit.Arena, compress bool) error {
	return writeFile(path, compress, func(w io.Writer) error { return WriteFlat(w, a) })
}

// WriteLayeredFile writes the layered format to path under the same
// locking/compression contract as WriteFlatFile.
func WriteLayeredFile(path string, a *circuit.Arena, compress bool) error {
	return writeFile(path, compress, func(w io.Writer) error { return WriteLayered(w, a) })
}

func writeFile(path string, compress bool, write func(io.Writer) error) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("gateio: locking %s: %w", path, err)
	}
	defer lock.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gateio: creating %s: %w", path, err)
	}
	defer f.Close()

	if !compress {
		return write(f)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("gateio: creating zstd writer: %w", err)
	}
	if err := write(zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
