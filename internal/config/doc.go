// Package config loads, normalizes, and validates neura's TOML
// configuration. Defaults live in defaults.go; Load layers a config file
// (explicit path, ~/.config/neura/config.toml, or a project-local
// neura.toml) on top, expands all path fields, and validates the result.
package config
