package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"neura/internal/config"
	"neura/internal/logging"
	"neura/internal/manifest"
	"neura/internal/probe"
)

// Result is the validation outcome for one episode.
type Result struct {
	Chunk        string          `json:"chunk"`
	EpisodeIndex int             `json:"episode_index"`
	Status       manifest.Status `json:"status"`
	Passed       bool            `json:"passed"`
	Skipped      bool            `json:"skipped,omitempty"`
	Failures     []string        `json:"failures,omitempty"`
	FramesFront  int64           `json:"frames_front,omitempty"`
	FramesWrist  int64           `json:"frames_wrist,omitempty"`
	FPSFront     float64         `json:"fps_front,omitempty"`
	FPSWrist     float64         `json:"fps_wrist,omitempty"`
	ValidatedAt  time.Time       `json:"validated_at"`
}

// Summary aggregates a validation pass for summary.toml.
type Summary struct {
	GeneratedAt    time.Time      `toml:"generated_at"`
	Total          int            `toml:"total"`
	Passed         int            `toml:"passed"`
	Failed         int            `toml:"failed"`
	Skipped        int            `toml:"skipped"`
	FailureReasons map[string]int `toml:"failure_reasons,omitempty"`
}

// Validator runs integrity checks over manifest rows.
type Validator struct {
	cfg    *config.Config
	prober probe.Prober
	logger *slog.Logger
}

// New builds a validator. A nil prober disables video probing, as does
// the skip_video config switch.
func New(cfg *config.Config, prober probe.Prober, logger *slog.Logger) *Validator {
	return &Validator{
		cfg:    cfg,
		prober: prober,
		logger: logging.NewComponentLogger(logger, "validation"),
	}
}

// Run validates the given rows and writes the stage outputs. DELETED rows
// are excluded up front; PENDING rows are recorded as skipped so a later
// pass picks them up.
func (v *Validator) Run(ctx context.Context, rows []manifest.Row) (*Summary, []Result, error) {
	now := time.Now().UTC()
	summary := &Summary{GeneratedAt: now, FailureReasons: map[string]int{}}
	var results []Result

	recorderIndex, err := loadRecorderIndex(v.cfg.Paths.MetaDir)
	if err != nil {
		return nil, nil, err
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if row.Status == manifest.StatusDeleted {
			continue
		}
		result := v.validateRow(ctx, row, recorderIndex, now)
		results = append(results, result)

		summary.Total++
		switch {
		case result.Skipped:
			summary.Skipped++
		case result.Passed:
			summary.Passed++
		default:
			summary.Failed++
			for _, reason := range result.Failures {
				summary.FailureReasons[reason]++
			}
		}
	}

	if err := v.writeOutputs(summary, results); err != nil {
		return nil, nil, err
	}

	v.logger.Info("validation complete",
		logging.Int("total", summary.Total),
		logging.Int("passed", summary.Passed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, results, nil
}

func (v *Validator) validateRow(ctx context.Context, row manifest.Row, recorderIndex map[int]int64, now time.Time) Result {
	result := Result{
		Chunk:        row.Chunk,
		EpisodeIndex: row.EpisodeIndex,
		Status:       row.Status,
		ValidatedAt:  now,
	}

	switch row.Status {
	case manifest.StatusPending:
		result.Skipped = true
		return result
	case manifest.StatusError:
		result.Failures = append(result.Failures, "discovery_error")
		return result
	case manifest.StatusOrphanVideo:
		result.Failures = append(result.Failures, "no_trajectory")
		return result
	case manifest.StatusMissingSide:
		result.Failures = append(result.Failures, "missing_camera_side")
	}

	if reason := checkTrajectory(row.ParquetURI); reason != "" {
		result.Failures = append(result.Failures, reason)
	}

	var expectedFrames int64
	if recorderIndex != nil {
		length, ok := recorderIndex[row.EpisodeIndex]
		if !ok {
			result.Failures = append(result.Failures, "not_in_recorder_meta")
		}
		expectedFrames = length
	}

	if v.cfg.Validation.SkipVideo || v.prober == nil {
		result.Passed = len(result.Failures) == 0
		return result
	}

	var front, wrist *probe.Result
	if row.ExistsFront {
		front = v.probeVideo(ctx, row.VideoFrontURI, "front", &result)
	}
	if row.ExistsWrist {
		wrist = v.probeVideo(ctx, row.VideoWristURI, "wrist", &result)
	}

	tolerance := int64(v.cfg.Validation.FrameTolerance)
	if front != nil {
		result.FramesFront = front.FrameCount()
		result.FPSFront = front.AvgFPS
		if reason := checkFPS(front.AvgFPS, v.cfg.Validation.FPSExpected); reason != "" {
			result.Failures = append(result.Failures, "front_"+reason)
		}
		if expectedFrames > 0 && absDiff(result.FramesFront, expectedFrames) > tolerance {
			result.Failures = append(result.Failures, "front_frames_vs_meta")
		}
	}
	if wrist != nil {
		result.FramesWrist = wrist.FrameCount()
		result.FPSWrist = wrist.AvgFPS
		if reason := checkFPS(wrist.AvgFPS, v.cfg.Validation.FPSExpected); reason != "" {
			result.Failures = append(result.Failures, "wrist_"+reason)
		}
		if expectedFrames > 0 && absDiff(result.FramesWrist, expectedFrames) > tolerance {
			result.Failures = append(result.Failures, "wrist_frames_vs_meta")
		}
	}
	if front != nil && wrist != nil && absDiff(result.FramesFront, result.FramesWrist) > tolerance {
		result.Failures = append(result.Failures, "frame_count_mismatch")
	}

	result.Passed = len(result.Failures) == 0
	return result
}

func (v *Validator) probeVideo(ctx context.Context, path, view string, result *Result) *probe.Result {
	probed, err := v.prober.Probe(ctx, path)
	if err != nil {
		v.logger.Warn("probe failed",
			logging.String("view", view),
			logging.String("path", path),
			logging.Error(err),
		)
		result.Failures = append(result.Failures, fmt.Sprintf("%s_probe_failed", view))
		return nil
	}
	return probed
}

// checkFPS tolerates one frame per second of drift from the configured
// rate, which covers 29.97-vs-30 style container rounding.
func checkFPS(got, expected float64) string {
	if expected <= 0 || got <= 0 {
		return ""
	}
	if math.Abs(got-expected) > 1.0 {
		return "fps_out_of_range"
	}
	return ""
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
