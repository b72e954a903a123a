package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"neura/internal/testsupport"
)

func TestCheckReadableDirectory(t *testing.T) {
	dir := t.TempDir()
	result := CheckReadableDirectory("Data root", dir)
	if !result.Passed {
		t.Errorf("existing dir failed: %s", result.Detail)
	}

	result = CheckReadableDirectory("Data root", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Error("missing dir passed")
	}
}

func TestCheckReadableDirectoryRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableDirectory("Data root", path); result.Passed {
		t.Error("regular file passed directory check")
	}
}

func TestCheckWritableDirectoryCreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out")
	result := CheckWritableDirectory("Output directory", path)
	if !result.Passed {
		t.Errorf("check failed: %s", result.Detail)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := CheckDiskSpace("Output disk space", t.TempDir())
	if result.Name == "" || result.Detail == "" {
		t.Errorf("incomplete result: %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Validation.SkipVideo = true
	if err := os.MkdirAll(cfg.Paths.DataRoot, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 checks, got %d", len(results))
	}

	byName := map[string]Result{}
	for _, result := range results {
		byName[result.Name] = result
	}
	if !byName["Data root"].Passed {
		t.Errorf("data root: %s", byName["Data root"].Detail)
	}
	if !byName["Output directory"].Passed {
		t.Errorf("output dir: %s", byName["Output directory"].Detail)
	}
	if !byName["FFprobe"].Optional {
		t.Error("ffprobe should be optional with skip_video")
	}
}

func TestFailed(t *testing.T) {
	if Failed([]Result{{Passed: true}, {Passed: false, Optional: true}}) {
		t.Error("optional failure counted as fatal")
	}
	if !Failed([]Result{{Passed: true}, {Passed: false}}) {
		t.Error("required failure not counted")
	}
}
