package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("num_threads: 4\nmemory_tier: secure\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NumThreads != 4 {
		t.Fatalf("num_threads: got %d, want 4", cfg.NumThreads)
	}
	if cfg.MemoryTier != TierSecure {
		t.Fatalf("memory_tier: got %q, want secure", cfg.MemoryTier)
	}
	// Untouched fields keep their default.
	if !cfg.EnableParallel {
		t.Fatal("enable_parallel should still default to true")
	}
}

func TestParseRejectsUnknownMemoryTier(t *testing.T) {
	_, err := Parse([]byte("memory_tier: bogus\n"))
	if err == nil {
		t.Fatal("expected validation error for unknown memory_tier")
	}
}

func TestParseRejectsNonPositiveBatchSize(t *testing.T) {
	_, err := Parse([]byte("batch_size: 0\n"))
	if err == nil {
		t.Fatal("expected validation error for batch_size 0")
	}
}
