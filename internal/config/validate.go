package config

import (
	"errors"
	"fmt"
	"math"
)

var linkMethods = map[string]struct{}{
	"symlink":       {},
	"hardlink":      {},
	"copy":          {},
	"manifest-only": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateMaterialize(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataRoot == "" {
		return errors.New("paths.data_root must be set")
	}
	if c.Paths.ManifestPath == "" {
		return errors.New("paths.manifest_path must be set")
	}
	return nil
}

func (c *Config) validateValidation() error {
	if c.Validation.FPSExpected <= 0 {
		return errors.New("validation.fps_expected must be positive")
	}
	if c.Validation.FrameTolerance < 0 {
		return errors.New("validation.frame_tolerance must not be negative")
	}
	return nil
}

func (c *Config) validateMaterialize() error {
	m := c.Materialize
	for name, ratio := range map[string]float64{
		"materialize.train_ratio": m.TrainRatio,
		"materialize.val_ratio":   m.ValRatio,
		"materialize.test_ratio":  m.TestRatio,
	} {
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("%s must be within [0, 1]", name)
		}
	}
	if math.Abs(m.TrainRatio+m.ValRatio+m.TestRatio-1.0) > 1e-9 {
		return errors.New("materialize ratios must sum to 1.0")
	}
	if _, ok := linkMethods[m.LinkMethod]; !ok {
		return fmt.Errorf("materialize.link_method: unsupported value %q (use symlink, hardlink, copy, or manifest-only)", m.LinkMethod)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
