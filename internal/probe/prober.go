package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result holds the video properties validation cares about.
type Result struct {
	Codec      string
	Width      int
	Height     int
	NBFrames   int64
	AvgFPS     float64
	RealFPS    float64
	Duration   float64
	SizeBytes  int64
	FormatName string
}

// FrameCount returns the stream's declared frame count, estimating from
// duration and average frame rate when the container omits nb_frames.
func (r *Result) FrameCount() int64 {
	if r.NBFrames > 0 {
		return r.NBFrames
	}
	if r.Duration > 0 && r.AvgFPS > 0 {
		return int64(r.Duration*r.AvgFPS + 0.5)
	}
	return 0
}

// Prober inspects video files. The ffprobe-backed implementation is the
// default; tests substitute their own.
type Prober interface {
	Probe(ctx context.Context, path string) (*Result, error)
}

// FFProbe shells out to the ffprobe binary.
type FFProbe struct{}

// Available reports whether ffprobe can be found on PATH.
func Available() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// Probe runs a single ffprobe JSON call against path and returns the
// parsed result.
func (FFProbe) Probe(ctx context.Context, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	NBFrames     string `json:"nb_frames"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	Duration     string `json:"duration"`
}

func buildResult(raw *ffprobeOutput) (*Result, error) {
	var video *ffprobeStream
	for i := range raw.Streams {
		if raw.Streams[i].CodecType == "video" {
			video = &raw.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, fmt.Errorf("no video stream")
	}

	duration := parseFloat(video.Duration)
	if duration == 0 {
		duration = parseFloat(raw.Format.Duration)
	}

	return &Result{
		Codec:      video.CodecName,
		Width:      video.Width,
		Height:     video.Height,
		NBFrames:   parseInt64(video.NBFrames),
		AvgFPS:     parseRational(video.AvgFrameRate),
		RealFPS:    parseRational(video.RFrameRate),
		Duration:   duration,
		SizeBytes:  parseInt64(raw.Format.Size),
		FormatName: raw.Format.FormatName,
	}, nil
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// parseRational handles ffprobe frame rates like "30/1" and "30000/1001".
func parseRational(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "0/0" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		return parseFloat(s)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}
