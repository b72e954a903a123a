package testsupport

import (
	"path/filepath"
	"testing"

	"neura/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataRoot = filepath.Join(base, "data_root")
	cfg.Paths.ManifestPath = filepath.Join(base, "meta", "episodes.json")
	cfg.Paths.MetaDir = filepath.Join(base, "meta")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Discovery.Workers = 4
	// Keep stability checks instant for small fixtures.
	cfg.Discovery.StabilityMinBytes = 1 << 30
	cfg.Discovery.StabilityPauseMS = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithWorkers overrides the discovery worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Discovery.Workers = n
	}
}

// WithFullHash enables whole-file hashing on the test config.
func WithFullHash() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Discovery.FullHash = true
	}
}
