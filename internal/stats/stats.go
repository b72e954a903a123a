package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"neura/internal/config"
	"neura/internal/fileutil"
	"neura/internal/logging"
	"neura/internal/manifest"
	"neura/internal/validation"
)

// GlobalStatsFile is the stage's output filename.
const GlobalStatsFile = "global_stats.json"

// ChunkStats summarizes one chunk.
type ChunkStats struct {
	Chunk    string `json:"chunk"`
	Episodes int    `json:"episodes"`
	Complete int    `json:"complete"`
	Bytes    int64  `json:"bytes"`
}

// Global is the dataset-wide aggregate written to global_stats.json.
type Global struct {
	GeneratedAt   time.Time               `json:"generated_at"`
	Episodes      int                     `json:"episodes"`
	Chunks        int                     `json:"chunks"`
	TotalBytes    int64                   `json:"total_bytes"`
	MinBytes      int64                   `json:"min_bytes"`
	MaxBytes      int64                   `json:"max_bytes"`
	MeanBytes     int64                   `json:"mean_bytes"`
	ByStatus      map[manifest.Status]int `json:"by_status"`
	ByChunk       []ChunkStats            `json:"by_chunk"`
	CompleteRatio float64                 `json:"complete_ratio"`
	Features      *FeatureReduction       `json:"feature_stats,omitempty"`
}

// Compute folds manifest rows into the global aggregate. DELETED rows are
// recorded in the status breakdown but excluded from size figures.
func Compute(rows []manifest.Row, now time.Time) *Global {
	global := &Global{
		GeneratedAt: now,
		ByStatus:    manifest.Summarize(rows),
	}

	byChunk := map[string]*ChunkStats{}
	complete := 0
	first := true
	for _, row := range rows {
		if row.Status == manifest.StatusDeleted {
			continue
		}
		global.Episodes++
		global.TotalBytes += row.BytesTotal

		if first || row.BytesTotal < global.MinBytes {
			global.MinBytes = row.BytesTotal
		}
		if first || row.BytesTotal > global.MaxBytes {
			global.MaxBytes = row.BytesTotal
		}
		first = false

		cs, ok := byChunk[row.Chunk]
		if !ok {
			cs = &ChunkStats{Chunk: row.Chunk}
			byChunk[row.Chunk] = cs
		}
		cs.Episodes++
		cs.Bytes += row.BytesTotal
		if row.ExistsFront && row.ExistsWrist && row.ParquetURI != "" {
			cs.Complete++
			complete++
		}
	}

	if global.Episodes > 0 {
		global.MeanBytes = global.TotalBytes / int64(global.Episodes)
		global.CompleteRatio = float64(complete) / float64(global.Episodes)
	}

	chunks := make([]string, 0, len(byChunk))
	for chunk := range byChunk {
		chunks = append(chunks, chunk)
	}
	sort.Strings(chunks)
	for _, chunk := range chunks {
		global.ByChunk = append(global.ByChunk, *byChunk[chunk])
	}
	global.Chunks = len(global.ByChunk)
	return global
}

// Run loads the manifest, computes the aggregate, and writes it out.
func Run(cfg *config.Config, logger *slog.Logger) (*Global, error) {
	log := logging.NewComponentLogger(logger, "stats")

	snapshot, err := manifest.Load(cfg.Paths.ManifestPath)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, fmt.Errorf("no manifest at %s; run discover first", cfg.Paths.ManifestPath)
	}

	global := Compute(snapshot.Rows, time.Now().UTC())

	validated, err := loadValidatedIDs(filepath.Join(cfg.Paths.OutputDir, validation.ValidatedFile))
	if err != nil {
		return nil, err
	}
	features, err := ReduceFeatures(filepath.Join(cfg.Paths.MetaDir, EpisodesStatsFile), validated)
	if err != nil {
		return nil, err
	}
	if features != nil {
		global.Features = features
	} else {
		log.Debug("no episode stats sidecar, skipping feature reduction",
			logging.String("meta_dir", cfg.Paths.MetaDir))
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(global, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(cfg.Paths.OutputDir, GlobalStatsFile)
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write stats: %w", err)
	}

	log.Info("stats written",
		logging.String("path", path),
		logging.Int("episodes", global.Episodes),
		logging.Int("chunks", global.Chunks),
	)
	return global, nil
}
