// Package dedup implements the structural gate deduplicator and the
// higher-level multi-gate pattern cache described in spec §4.5. Both are
// per-compiler-instance (never global singletons, per the source's
// "reshape as per-compiler-instance members" note). Kernels ask the
// Builder for gates and receive a WireId whether or not a gate was
// appended. A Builder creates a PatternCache when caching is enabled and
// exposes it through Cache(), but no kernel in this module consults it, so
// only structural deduplication changes which gates are appended.
package dedup

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
)

type signature struct {
	left, right circuit.WireId
	kind        circuit.GateKind
}

type entry struct {
	sig    signature
	output circuit.WireId
}

// Builder wraps a circuit.Arena with an optional structural deduplicator
// and an optional pattern cache. Kernels build exclusively through a
// Builder so that deduplication stays transparent: AND/XOR/Gate always
// return a usable WireId, whether or not a gate was actually appended.
type Builder struct {
	// Arena is non-nil only when this Builder writes directly to a
	// shared circuit.Arena (the ordinary, sequential path). The Parallel
	// Driver's per-worker builders are backed by a circuit.LocalBuffer
	// instead (see NewBufferedBuilder) and leave this nil; callers that
	// need the gate history in that case read the worker's LocalBuffer
	// directly.
	Arena *circuit.Arena

	sink circuit.GateSink

	dedupEnabled bool
	table        map[uint64][]entry

	cache *PatternCache

	gatesRequested int
	gatesReused    int
}

// NewBuilder creates a Builder writing directly to arena. enableDedup and
// enableCache toggle the two independent optimizations (spec §6.3
// enable_deduplication/enable_caching).
func NewBuilder(arena *circuit.Arena, enableDedup, enableCache bool) *Builder {
	return newBuilder(arena, arena, enableDedup, enableCache)
}

// NewBufferedBuilder creates a Builder writing to a worker-local sink
// (typically a circuit.LocalBuffer), for use inside one Parallel Driver
// worker. Each worker gets its own Builder and therefore its own
// dedup/cache state -- structural deduplication does not see across
// worker boundaries within a batch, trading a little gate reuse for
// genuine concurrent emission.
func NewBufferedBuilder(sink circuit.GateSink, enableDedup, enableCache bool) *Builder {
	return newBuilder(nil, sink, enableDedup, enableCache)
}

func newBuilder(arena *circuit.Arena, sink circuit.GateSink, enableDedup, enableCache bool) *Builder {
	b := &Builder{
		Arena:        arena,
		sink:         sink,
		dedupEnabled: enableDedup,
	}
	if enableDedup {
		b.table = make(map[uint64][]entry)
	}
	if enableCache {
		b.cache = NewPatternCache()
	}
	return b
}

func (b *Builder) newGate(left, right circuit.WireId, kind circuit.GateKind) circuit.WireId {
	out := b.sink.AllocateWire()
	b.sink.RecordGate(circuit.Gate{Left: left, Right: right, Output: out, Kind: kind})
	return out
}

// Gate requests a two-input gate, applying commutative-input normalization
// and structural deduplication (spec §4.5 steps 1-4) when enabled.
func (b *Builder) Gate(left, right circuit.WireId, kind circuit.GateKind) circuit.WireId {
	b.gatesRequested++
	if !b.dedupEnabled {
		return b.newGate(left, right, kind)
	}

	// Both AND and XOR are commutative: normalize so left <= right.
	if left > right {
		left, right = right, left
	}
	sig := signature{left: left, right: right, kind: kind}
	h := hashSignature(sig)
	if bucket, ok := b.table[h]; ok {
		for _, e := range bucket {
			if e.sig == sig {
				b.gatesReused++
				return e.output
			}
		}
	}
	out := b.newGate(left, right, kind)
	b.table[h] = append(b.table[h], entry{sig: sig, output: out})
	return out
}

// AND requests an AND gate.
func (b *Builder) AND(left, right circuit.WireId) circuit.WireId {
	return b.Gate(left, right, circuit.KindAND)
}

// XOR requests an XOR gate.
func (b *Builder) XOR(left, right circuit.WireId) circuit.WireId {
	return b.Gate(left, right, circuit.KindXOR)
}

// OR is synthesized as (a xor b) xor (a and b), per spec §4.2's "Logic
// R-type" contract: 3 gates when neither operand is deduplicated away.
func (b *Builder) OR(left, right circuit.WireId) circuit.WireId {
	x := b.XOR(left, right)
	a := b.AND(left, right)
	return b.XOR(x, a)
}

// NOT inverts a wire by XORing with the constant-true wire. Zero gates
// when the same inversion was already requested.
func (b *Builder) NOT(w circuit.WireId) circuit.WireId {
	return b.XOR(w, circuit.WireOne)
}

// MUX selects b1 when sel is true, b0 otherwise:
// (¬sel ∧ b0) ⊕ (sel ∧ b1). Four gates (one NOT expressed as an XOR, two
// ANDs, one XOR), matching the barrel shifter's per-bit MUX (spec §4.3).
func (b *Builder) MUX(sel, b0, b1 circuit.WireId) circuit.WireId {
	notSel := b.NOT(sel)
	t0 := b.AND(notSel, b0)
	t1 := b.AND(sel, b1)
	return b.XOR(t0, t1)
}

// Cache returns the pattern cache, or nil if caching is disabled.
func (b *Builder) Cache() *PatternCache { return b.cache }

// Stats returns the number of gate requests made and how many were served
// from the structural dedup table instead of appending a new gate.
func (b *Builder) Stats() (requested, reused int) {
	return b.gatesRequested, b.gatesReused
}

func hashSignature(s signature) uint64 {
	var buf [9]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(s.left))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(s.right))
	buf[8] = byte(s.kind)
	return xxhash.Sum64(buf[:])
}
