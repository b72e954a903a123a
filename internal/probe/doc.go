// Package probe wraps ffprobe for camera video inspection.
//
// Validation needs frame counts, frame rates, and durations for each
// episode's MP4s. A single ffprobe JSON call per file supplies all of
// them; parsing is exported separately so tests run without the binary.
package probe
