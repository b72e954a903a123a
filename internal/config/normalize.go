package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDiscovery()
	c.normalizeLogging()
	c.Materialize.LinkMethod = strings.ToLower(strings.TrimSpace(c.Materialize.LinkMethod))
	if c.Materialize.LinkMethod == "" {
		c.Materialize.LinkMethod = defaultLinkMethod
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataRoot, err = ExpandPath(c.Paths.DataRoot); err != nil {
		return fmt.Errorf("paths.data_root: %w", err)
	}
	if c.Paths.ManifestPath, err = ExpandPath(c.Paths.ManifestPath); err != nil {
		return fmt.Errorf("paths.manifest_path: %w", err)
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	// Meta sidecars default to the recorder's meta directory in the data root.
	if strings.TrimSpace(c.Paths.MetaDir) == "" {
		c.Paths.MetaDir = filepath.Join(c.Paths.DataRoot, "meta")
	}
	if c.Paths.MetaDir, err = ExpandPath(c.Paths.MetaDir); err != nil {
		return fmt.Errorf("paths.meta_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDiscovery() {
	if c.Discovery.Workers < 1 {
		c.Discovery.Workers = 1
	}
	if c.Discovery.Workers > MaxWorkers {
		c.Discovery.Workers = MaxWorkers
	}
	if c.Discovery.StabilityMinBytes <= 0 {
		c.Discovery.StabilityMinBytes = defaultStabilityMinBytes
	}
	if c.Discovery.StabilityPauseMS <= 0 {
		c.Discovery.StabilityPauseMS = defaultStabilityPauseMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
