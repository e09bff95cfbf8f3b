// Package metrics wraps github.com/prometheus/client_golang in a small
// per-compiler-instance Registry, the same "never a global singleton"
// posture internal/dedup takes for its deduplication table. This diverges
// from wyf-ACCEPT-eth2030's own pkg/metrics, which hand-rolls its
// Prometheus text exposition format rather than importing client_golang;
// client_golang is already a listed dependency here, so this package uses
// it directly instead of reimplementing the wire format. No command or
// package in this module creates a Registry or updates its metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every counter/gauge/histogram one compiler instance
// reports, scoped under its own prometheus.Registry rather than the
// global default so that multiple Registries in one process
// (e.g. benchmarks running several configurations back to back) never
// collide on metric names.
type Registry struct {
	reg *prometheus.Registry

	GatesEmitted        prometheus.Counter
	GatesDeduplicated   prometheus.Counter
	InstructionsLowered prometheus.Counter
	WavesScheduled      prometheus.Counter
	CompileDuration     prometheus.Histogram
	MemoryAccesses      prometheus.Counter
}

// NewRegistry creates a Registry with all metrics pre-registered under
// namespace "rvcirc".
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		GatesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rvcirc",
			Name:      "gates_emitted_total",
			Help:      "Total boolean gates appended to the arena.",
		}),
		GatesDeduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rvcirc",
			Name:      "gates_deduplicated_total",
			Help:      "Gate requests served from the structural dedup table instead of appending a new gate.",
		}),
		InstructionsLowered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rvcirc",
			Name:      "instructions_lowered_total",
			Help:      "RISC-V instructions lowered into gates.",
		}),
		WavesScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rvcirc",
			Name:      "waves_scheduled_total",
			Help:      "Dependency-analysis waves dispatched by the parallel driver.",
		}),
		CompileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rvcirc",
			Name:      "compile_duration_seconds",
			Help:      "Wall-clock time to compile one program into a circuit.",
			Buckets:   prometheus.DefBuckets,
		}),
		MemoryAccesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rvcirc",
			Name:      "memory_tier_accesses_total",
			Help:      "Tier.Access calls made while lowering loads and stores.",
		}),
	}
	reg.MustRegister(
		r.GatesEmitted,
		r.GatesDeduplicated,
		r.InstructionsLowered,
		r.WavesScheduled,
		r.CompileDuration,
		r.MemoryAccesses,
	)
	return r
}

// Gatherer exposes the underlying prometheus.Registry for an HTTP
// /metrics handler (promhttp.HandlerFor) to scrape.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
