package stats

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
)

// EpisodesStatsFile is the recorder sidecar with per-episode feature stats.
const EpisodesStatsFile = "episodes_stats.jsonl"

// FeatureStats is a reduced per-feature aggregate: dimension-wise mean,
// std, min and max over every included episode, weighted by frame count.
type FeatureStats struct {
	Count int64     `json:"count"`
	Mean  []float64 `json:"mean"`
	Std   []float64 `json:"std"`
	Min   []float64 `json:"min"`
	Max   []float64 `json:"max"`
}

// FeatureReduction is the outcome of folding episodes_stats.jsonl.
type FeatureReduction struct {
	EpisodesUsed int                     `json:"episodes_used"`
	TotalFrames  int64                   `json:"total_frames"`
	Features     map[string]FeatureStats `json:"features"`
}

// flexCount tolerates the count shapes recorders emit: a plain number or a
// per-dimension list (first element wins).
type flexCount int64

func (c *flexCount) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*c = flexCount(scalar)
		return nil
	}
	var list []float64
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			*c = flexCount(list[0])
		}
		return nil
	}
	return fmt.Errorf("count is neither number nor list: %s", data)
}

// flexVector tolerates a scalar where a one-dimensional vector is meant.
type flexVector []float64

func (v *flexVector) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*v = flexVector{scalar}
		return nil
	}
	var list []float64
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*v = flexVector(list)
	return nil
}

type featureLine struct {
	EpisodeIndex int                       `json:"episode_index"`
	Stats        map[string]episodeFeature `json:"stats"`
}

type episodeFeature struct {
	Count flexCount  `json:"count"`
	Mean  flexVector `json:"mean"`
	Std   flexVector `json:"std"`
	Min   flexVector `json:"min"`
	Max   flexVector `json:"max"`
}

func (f episodeFeature) valid() bool {
	d := len(f.Mean)
	return f.Count > 0 && d > 0 &&
		len(f.Std) == d && len(f.Min) == d && len(f.Max) == d
}

// featureAcc accumulates one feature across episodes. Variance uses the
// law of total variance over per-episode means and stds, so the reduction
// streams without revisiting any episode.
type featureAcc struct {
	frames int64
	sumMu  []float64
	sumM2  []float64
	min    []float64
	max    []float64
}

func (a *featureAcc) add(f episodeFeature) {
	d := len(f.Mean)
	if a.sumMu == nil {
		a.sumMu = make([]float64, d)
		a.sumM2 = make([]float64, d)
		a.min = make([]float64, d)
		a.max = make([]float64, d)
		for i := 0; i < d; i++ {
			a.min[i] = math.Inf(1)
			a.max[i] = math.Inf(-1)
		}
	}
	if len(a.sumMu) != d {
		return
	}
	n := float64(f.Count)
	a.frames += int64(f.Count)
	for i := 0; i < d; i++ {
		mu := f.Mean[i]
		sd := f.Std[i]
		a.sumMu[i] += n * mu
		a.sumM2[i] += n * (sd*sd + mu*mu)
		a.min[i] = math.Min(a.min[i], f.Min[i])
		a.max[i] = math.Max(a.max[i], f.Max[i])
	}
}

func (a *featureAcc) finalize() (FeatureStats, bool) {
	if a.frames == 0 {
		return FeatureStats{}, false
	}
	total := float64(a.frames)
	d := len(a.sumMu)
	out := FeatureStats{
		Count: a.frames,
		Mean:  make([]float64, d),
		Std:   make([]float64, d),
		Min:   a.min,
		Max:   a.max,
	}
	for i := 0; i < d; i++ {
		mean := a.sumMu[i] / total
		variance := a.sumM2[i]/total - mean*mean
		if variance < 0 {
			variance = 0
		}
		out.Mean[i] = mean
		out.Std[i] = math.Sqrt(variance)
	}
	return out, true
}

// ReduceFeatures folds the recorder's per-episode feature stats into global
// figures. A nil validated set includes every episode; otherwise only listed
// episode indices contribute. A missing sidecar returns (nil, nil) so the
// stage degrades to the manifest-level aggregate alone.
func ReduceFeatures(path string, validated map[int]struct{}) (*FeatureReduction, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open episode stats: %w", err)
	}
	defer f.Close()

	accs := map[string]*featureAcc{}
	reduction := &FeatureReduction{Features: map[string]FeatureStats{}}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row featureLine
		if err := json.Unmarshal(line, &row); err != nil {
			continue
		}
		if validated != nil {
			if _, ok := validated[row.EpisodeIndex]; !ok {
				continue
			}
		}

		used := false
		var frames int64
		for key, feature := range row.Stats {
			if !feature.valid() {
				continue
			}
			acc, ok := accs[key]
			if !ok {
				acc = &featureAcc{}
				accs[key] = acc
			}
			acc.add(feature)
			used = true
			if int64(feature.Count) > frames {
				frames = int64(feature.Count)
			}
		}
		if used {
			reduction.EpisodesUsed++
			reduction.TotalFrames += frames
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read episode stats: %w", err)
	}

	for key, acc := range accs {
		if stats, ok := acc.finalize(); ok {
			reduction.Features[key] = stats
		}
	}
	return reduction, nil
}

// loadValidatedIDs reads the validation stage's validated_episodes.jsonl
// and returns the episode indices it lists, or nil when the file is absent.
func loadValidatedIDs(path string) (map[int]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open validated episodes: %w", err)
	}
	defer f.Close()

	ids := map[int]struct{}{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry struct {
			EpisodeIndex int `json:"episode_index"`
		}
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		ids[entry.EpisodeIndex] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read validated episodes: %w", err)
	}
	return ids, nil
}
