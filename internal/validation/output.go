package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"neura/internal/fileutil"
)

// ValidatedFile lists the episodes that passed; stats and materialize can
// restrict themselves to it.
const ValidatedFile = "validated_episodes.jsonl"

const (
	resultsFile  = "results.jsonl"
	failuresFile = "failures.jsonl"
	summaryFile  = "summary.toml"
)

func (v *Validator) writeOutputs(summary *Summary, results []Result) error {
	if err := v.cfg.EnsureDirectories(); err != nil {
		return err
	}
	dir := v.cfg.Paths.OutputDir

	var failed, passed []Result
	for _, result := range results {
		if result.Skipped {
			continue
		}
		if result.Passed {
			passed = append(passed, result)
		} else {
			failed = append(failed, result)
		}
	}

	if err := writeJSONL(filepath.Join(dir, resultsFile), results); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, failuresFile), failed); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, ValidatedFile), passed); err != nil {
		return err
	}

	data, err := toml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, summaryFile), data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func writeJSONL(path string, results []Result) error {
	var buf bytes.Buffer
	for _, result := range results {
		line, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
