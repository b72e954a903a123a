package fingerprint

import (
	"os"
	"time"
)

const (
	defaultStabilityMinBytes = 50 * 1024 * 1024
	defaultStabilityPause    = 150 * time.Millisecond
)

// StabilityChecker decides whether a file is still being actively written.
// Files below MinBytes are assumed to be written atomically and report
// stable immediately; larger files are sampled twice with a short pause and
// must match on size and modification time. This is a heuristic, not a
// lock: it reduces but does not eliminate races with an external writer.
type StabilityChecker struct {
	MinBytes int64
	Pause    time.Duration
}

// DefaultStability carries the production thresholds.
var DefaultStability = StabilityChecker{
	MinBytes: defaultStabilityMinBytes,
	Pause:    defaultStabilityPause,
}

// IsStable reports whether path looks quiescent. A file that disappears
// between samples reports false: not yet stable rather than absent.
func (c StabilityChecker) IsStable(path string) bool {
	minBytes := c.MinBytes
	if minBytes <= 0 {
		minBytes = defaultStabilityMinBytes
	}
	pause := c.Pause
	if pause <= 0 {
		pause = defaultStabilityPause
	}

	first, err := os.Stat(path)
	if err != nil {
		return false
	}
	if first.Size() < minBytes {
		return true
	}
	time.Sleep(pause)
	second, err := os.Stat(path)
	if err != nil {
		return false
	}
	return first.Size() == second.Size() && first.ModTime().Equal(second.ModTime())
}
