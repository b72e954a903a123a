package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataRoot     string `toml:"data_root"`
	ManifestPath string `toml:"manifest_path"`
	MetaDir      string `toml:"meta_dir"`
	OutputDir    string `toml:"output_dir"`
	LogDir       string `toml:"log_dir"`
}

// Discovery contains scan and fingerprinting settings.
type Discovery struct {
	Workers           int   `toml:"workers"`
	FullHash          bool  `toml:"full_hash"`
	StabilityMinBytes int64 `toml:"stability_min_bytes"`
	StabilityPauseMS  int   `toml:"stability_pause_ms"`
}

// Validation contains settings for the episode validation stage.
type Validation struct {
	FPSExpected    float64 `toml:"fps_expected"`
	FrameTolerance int     `toml:"frame_tolerance"`
	SkipVideo      bool    `toml:"skip_video"`
}

// Materialize contains dataset split and placement settings.
type Materialize struct {
	Seed       int64   `toml:"seed"`
	TrainRatio float64 `toml:"train_ratio"`
	ValRatio   float64 `toml:"val_ratio"`
	TestRatio  float64 `toml:"test_ratio"`
	LinkMethod string  `toml:"link_method"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for neura.
//
// Sections by subsystem:
//   - Paths: data root, manifest snapshot, meta sidecars, outputs, logs
//   - Discovery: worker pool size, hashing mode, stability thresholds
//   - Validation: ffprobe expectations and tolerances
//   - Materialize: split seed/ratios and video link method
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Discovery   Discovery   `toml:"discovery"`
	Validation  Validation  `toml:"validation"`
	Materialize Materialize `toml:"materialize"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/neura/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("neura.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories stages write into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.LogDir,
		c.Paths.OutputDir,
		filepath.Dir(c.Paths.ManifestPath),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ against the current user's home directory
// and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}
