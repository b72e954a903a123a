package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "neura.log")
	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("scan complete", String("chunk", "000"), Int("episodes", 3))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"chunk":"000"`) {
		t.Fatalf("log output missing attrs: %s", data)
	}
}

func TestNewComponentLogger(t *testing.T) {
	logger := NewComponentLogger(nil, "discovery")
	if logger == nil {
		t.Fatal("nil logger")
	}
	// Must be safe to use even when built from a nil base.
	logger.Info("noop")
}
