// Package config loads the compiler's YAML configuration, following the
// same defaults-then-override-then-validate shape as
// wyf-ACCEPT-eth2030's pkg/node/config_loader.go, but parsed with
// gopkg.in/yaml.v2 instead of a hand-rolled line parser.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// MemoryTierKind selects which internal/memtier.Tier implementation backs
// a compilation run.
type MemoryTierKind string

const (
	TierUltra  MemoryTierKind = "ultra"
	TierSimple MemoryTierKind = "simple"
	TierSecure MemoryTierKind = "secure"
)

// Config is the full set of knobs a compilation run accepts.
type Config struct {
	EnableParallel      bool           `yaml:"enable_parallel"`
	EnableFusion        bool           `yaml:"enable_fusion"`
	EnableDeduplication bool           `yaml:"enable_deduplication"`
	EnableCaching       bool           `yaml:"enable_caching"`
	NumThreads          int            `yaml:"num_threads"`
	BatchSize           int            `yaml:"batch_size"`
	MemoryTier          MemoryTierKind `yaml:"memory_tier"`
	MemoryWords         int            `yaml:"memory_words"`
}

// Default returns the configuration a bare `rvcirc compile` run uses with
// no config file supplied.
func Default() *Config {
	return &Config{
		EnableParallel:      true,
		EnableFusion:        true,
		EnableDeduplication: true,
		EnableCaching:       true,
		NumThreads:          0, // 0 means "let pdriver.NewDriver pick numcpus.GetOnline"
		BatchSize:           256,
		MemoryTier:          TierSimple,
		MemoryWords:         256,
	}
}

// Load reads a YAML config file from path, merging it onto Default() so
// that a file only needs to set the fields it wants to override.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse merges raw YAML bytes onto Default() and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internally-consistent values.
func (c *Config) Validate() error {
	if c.NumThreads < 0 {
		return fmt.Errorf("config: num_threads must be >= 0, got %d", c.NumThreads)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be > 0, got %d", c.BatchSize)
	}
	switch c.MemoryTier {
	case TierUltra, TierSimple, TierSecure:
	default:
		return fmt.Errorf("config: unknown memory_tier %q", c.MemoryTier)
	}
	if c.MemoryWords <= 0 {
		return fmt.Errorf("config: memory_words must be > 0, got %d", c.MemoryWords)
	}
	return nil
}
