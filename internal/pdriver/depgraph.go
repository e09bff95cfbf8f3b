// Package pdriver schedules independent runs of register-only instructions
// onto concurrent workers, falling back to strict sequential lowering at
// every load, store, branch, jump, or system instruction (a Classify
// barrier). Splitting the program into runs this way means the dependency
// graph only ever has to reason about 32 integer registers, never memory
// addresses.
package pdriver

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/lower"
)

// segment is one maximal run of consecutive ALU-family instructions, or a
// single barrier instruction standing alone.
type segment struct {
	start, end int // [start, end) indices into the program
	isBarrier  bool
}

// segments splits program into alternating ALU runs and barrier singletons,
// in program order.
func segments(program []uint32) []segment {
	var out []segment
	i := 0
	for i < len(program) {
		cls := lower.Classify(program[i])
		if cls.IsBarrier {
			out = append(out, segment{start: i, end: i + 1, isBarrier: true})
			i++
			continue
		}
		start := i
		for i < len(program) && !lower.Classify(program[i]).IsBarrier {
			i++
		}
		out = append(out, segment{start: start, end: i, isBarrier: false})
	}
	return out
}

// batches greedily levels the instructions of one ALU run into waves that
// can be lowered concurrently: wave k's members have no RAW, WAW, or WAR
// dependency on each other, only on waves before them. Register x0 is
// excluded from hazard tracking since a write to it is always discarded
// (Lowerer.writeback is a no-op for rd==0).
func batches(program []uint32, run segment) [][]int {
	n := run.end - run.start
	lastWrite := make([]int, 32)
	lastRead := make([]int, 32)
	for i := range lastWrite {
		lastWrite[i], lastRead[i] = -1, -1
	}

	var waves [][]int
	for offset := 0; offset < n; offset++ {
		cls := lower.Classify(program[run.start+offset])
		reads := readSet(cls)
		writes := writeSet(cls)

		level := 0
		for _, r := range reads.BitSet() {
			if lastWrite[r]+1 > level {
				level = lastWrite[r] + 1
			}
		}
		for _, r := range writes.BitSet() {
			if lastWrite[r]+1 > level {
				level = lastWrite[r] + 1
			}
			if lastRead[r]+1 > level {
				level = lastRead[r] + 1
			}
		}

		for len(waves) <= level {
			waves = append(waves, nil)
		}
		waves[level] = append(waves[level], run.start+offset)

		for _, r := range reads.BitSet() {
			if level > lastRead[r] {
				lastRead[r] = level
			}
		}
		for _, r := range writes.BitSet() {
			lastWrite[r] = level
		}
	}
	return waves
}

// regSet is a thin wrapper over bitset.BitSet sized to the 32 integer
// registers, used to track which registers one instruction reads or
// writes.
type regSet struct {
	bits *bitset.BitSet
}

func newRegSet() regSet {
	return regSet{bits: bitset.New(32)}
}

func (s regSet) add(reg uint32) regSet {
	s.bits.Set(uint(reg))
	return s
}

// BitSet returns the set registers as plain ints, for range-friendly
// iteration at call sites.
func (s regSet) BitSet() []uint {
	out := make([]uint, 0, 2)
	for i, e := s.bits.NextSet(0); e; i, e = s.bits.NextSet(i + 1) {
		out = append(out, i)
	}
	return out
}

func readSet(c lower.Classification) regSet {
	s := newRegSet()
	if c.ReadsRS1 {
		s = s.add(c.RS1)
	}
	if c.ReadsRS2 {
		s = s.add(c.RS2)
	}
	return s
}

func writeSet(c lower.Classification) regSet {
	s := newRegSet()
	if c.WritesRD && c.RD != 0 {
		s = s.add(c.RD)
	}
	return s
}
