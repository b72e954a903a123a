package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Discovery.Workers != defaultWorkers {
		t.Fatalf("workers = %d", cfg.Discovery.Workers)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	payload := `
[paths]
data_root = "` + dir + `/robot_data"
manifest_path = "` + dir + `/manifest/episodes.json"

[discovery]
workers = 4
full_hash = true

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Discovery.Workers != 4 || !cfg.Discovery.FullHash {
		t.Fatalf("discovery = %+v", cfg.Discovery)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	// Meta dir defaults under the data root.
	if cfg.Paths.MetaDir != filepath.Join(dir, "robot_data", "meta") {
		t.Fatalf("meta_dir = %q", cfg.Paths.MetaDir)
	}
}

func TestWorkersClamped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	payload := `
[discovery]
workers = 500
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discovery.Workers != MaxWorkers {
		t.Fatalf("workers = %d, want %d", cfg.Discovery.Workers, MaxWorkers)
	}
}

func TestValidateRejectsBadRatios(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Materialize.TrainRatio = 0.9
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "sum to 1.0") {
		t.Fatalf("err = %v", err)
	}
}

func TestValidateRejectsBadLinkMethod(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Materialize.LinkMethod = "teleport"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected link method error")
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config rejected: %v", err)
	}
}
