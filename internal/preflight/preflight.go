package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"neura/internal/config"
	"neura/internal/probe"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// minFreeBytes is the disk space floor for the output directory. Below
// this, materialize copy runs are likely to fail partway.
const minFreeBytes = 1 << 30

// RunAll executes all applicable checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Data root", cfg.Paths.DataRoot),
		CheckWritableDirectory("Manifest directory", filepath.Dir(cfg.Paths.ManifestPath)),
		CheckWritableDirectory("Output directory", cfg.Paths.OutputDir),
		CheckWritableDirectory("Log directory", cfg.Paths.LogDir),
		CheckDiskSpace("Output disk space", cfg.Paths.OutputDir),
	}

	ffprobe := CheckFFprobe()
	// Video probing is off, so a missing ffprobe is informational only.
	if cfg.Validation.SkipVideo {
		ffprobe.Optional = true
	}
	results = append(results, ffprobe)

	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed && !result.Optional {
			return true
		}
	}
	return false
}

// CheckReadableDirectory verifies the directory exists and is readable.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

// CheckWritableDirectory verifies the directory exists and is writable,
// creating it first so a fresh install passes.
func CheckWritableDirectory(name, path string) Result {
	if path == "" || path == "." {
		return Result{Name: name, Detail: "not configured"}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
	}
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckDiskSpace verifies the filesystem holding path has headroom.
func CheckDiskSpace(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1<<30))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " below 1 GiB floor"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckFFprobe verifies the ffprobe binary is on PATH.
func CheckFFprobe() Result {
	const name = "FFprobe"
	if !probe.Available() {
		return Result{Name: name, Detail: "ffprobe not found on PATH"}
	}
	return Result{Name: name, Passed: true, Detail: "ffprobe found"}
}
