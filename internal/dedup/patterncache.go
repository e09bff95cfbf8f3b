package dedup

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/RhettCreighton/riscv-compiler-sub000/internal/circuit"
)

// patternCacheBytes bounds the pattern cache's memory footprint. fastcache
// shards and evicts internally once full, which is exactly the "bounded
// sharded cache" role this library plays here (spec §4.5: the memo key is
// FNV-1a; fastcache is only the storage backing it).
const patternCacheBytes = 64 * 1024 * 1024

// PatternCache memoizes whole multi-gate shapes (e.g. a 32-bit adder call)
// keyed by a shape tag plus the tuple of input wires. A hit returns the
// previously-produced output wires without re-invoking the kernel.
type PatternCache struct {
	c *fastcache.Cache
}

// NewPatternCache creates an empty pattern cache.
func NewPatternCache() *PatternCache {
	return &PatternCache{c: fastcache.New(patternCacheBytes)}
}

// Lookup returns the cached output wires for (shape, inputs), if present.
func (pc *PatternCache) Lookup(shape string, inputs []circuit.WireId) ([]circuit.WireId, bool) {
	key := patternKey(shape, inputs)
	raw, ok := pc.c.HasGet(nil, key)
	if !ok {
		return nil, false
	}
	return decodeWires(raw), true
}

// Store records the output wires produced for (shape, inputs).
func (pc *PatternCache) Store(shape string, inputs, outputs []circuit.WireId) {
	key := patternKey(shape, inputs)
	pc.c.Set(key, encodeWires(outputs))
}

// patternKey computes the FNV-1a digest of the shape tag followed by the
// little-endian input wire tuple, per spec §4.5.
func patternKey(shape string, inputs []circuit.WireId) []byte {
	h := fnv.New64a()
	h.Write([]byte(shape))
	var buf [4]byte
	for _, w := range inputs {
		binary.LittleEndian.PutUint32(buf[:], uint32(w))
		h.Write(buf[:])
	}
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, h.Sum64())
	return key
}

func encodeWires(ws []circuit.WireId) []byte {
	out := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(w))
	}
	return out
}

func decodeWires(raw []byte) []circuit.WireId {
	n := len(raw) / 4
	out := make([]circuit.WireId, n)
	for i := 0; i < n; i++ {
		out[i] = circuit.WireId(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}
