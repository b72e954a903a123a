package materialize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"neura/internal/config"
	"neura/internal/fileutil"
	"neura/internal/layout"
	"neura/internal/logging"
	"neura/internal/manifest"
)

// DatasetManifestFile is the assignment file written into the dataset root.
const DatasetManifestFile = "dataset_manifest.json"

// LinkMethod selects how episode files land in the dataset tree.
type LinkMethod string

const (
	LinkSymlink      LinkMethod = "symlink"
	LinkHardlink     LinkMethod = "hardlink"
	LinkCopy         LinkMethod = "copy"
	LinkManifestOnly LinkMethod = "manifest-only"
)

// ParseLinkMethod validates a link method string.
func ParseLinkMethod(value string) (LinkMethod, error) {
	switch LinkMethod(value) {
	case LinkSymlink, LinkHardlink, LinkCopy, LinkManifestOnly:
		return LinkMethod(value), nil
	default:
		return "", fmt.Errorf("unknown link method %q", value)
	}
}

// Entry records one episode's assignment in the dataset manifest.
type Entry struct {
	Chunk        string `json:"chunk"`
	EpisodeIndex int    `json:"episode_index"`
	Split        Split  `json:"split"`
	Parquet      string `json:"parquet"`
	VideoFront   string `json:"video_front"`
	VideoWrist   string `json:"video_wrist"`
	Fingerprint  string `json:"fingerprint,omitempty"`
}

// DatasetManifest is the document written as dataset_manifest.json.
type DatasetManifest struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Seed        int64         `json:"seed"`
	Ratios      Ratios        `json:"ratios"`
	LinkMethod  LinkMethod    `json:"link_method"`
	Counts      map[Split]int `json:"counts"`
	Entries     []Entry       `json:"entries"`
}

// Run assigns complete episodes to splits and lays out the dataset tree
// under <output_dir>/dataset. Incomplete or problem rows are skipped; only
// fully present episodes belong in a training set.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DatasetManifest, error) {
	log := logging.NewComponentLogger(logger, "materialize")

	method, err := ParseLinkMethod(cfg.Materialize.LinkMethod)
	if err != nil {
		return nil, err
	}

	snapshot, err := manifest.Load(cfg.Paths.ManifestPath)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, fmt.Errorf("no manifest at %s; run discover first", cfg.Paths.ManifestPath)
	}

	ratios := Ratios{
		Train: cfg.Materialize.TrainRatio,
		Val:   cfg.Materialize.ValRatio,
		Test:  cfg.Materialize.TestRatio,
	}
	seed := cfg.Materialize.Seed

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	datasetRoot := filepath.Join(cfg.Paths.OutputDir, "dataset")

	doc := &DatasetManifest{
		GeneratedAt: time.Now().UTC(),
		Seed:        seed,
		Ratios:      ratios,
		LinkMethod:  method,
		Counts:      map[Split]int{},
	}

	for _, row := range snapshot.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !eligible(row) {
			continue
		}
		split := Assign(seed, row.Chunk, row.EpisodeIndex, ratios)
		entry := Entry{
			Chunk:        row.Chunk,
			EpisodeIndex: row.EpisodeIndex,
			Split:        split,
			Fingerprint:  row.Fingerprint,
		}

		splitTree := layout.NewTree(filepath.Join(datasetRoot, string(split)))
		entry.Parquet = splitTree.TrajectoryPath(row.Chunk, row.EpisodeIndex)
		entry.VideoFront = splitTree.VideoPath(row.Chunk, layout.ViewFront, row.EpisodeIndex)
		entry.VideoWrist = splitTree.VideoPath(row.Chunk, layout.ViewWrist, row.EpisodeIndex)

		if method != LinkManifestOnly {
			placements := [][2]string{
				{row.ParquetURI, entry.Parquet},
				{row.VideoFrontURI, entry.VideoFront},
				{row.VideoWristURI, entry.VideoWrist},
			}
			for _, p := range placements {
				if err := place(p[0], p[1], method); err != nil {
					return nil, err
				}
			}
		}

		doc.Counts[split]++
		doc.Entries = append(doc.Entries, entry)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode dataset manifest: %w", err)
	}
	data = append(data, '\n')
	manifestPath := filepath.Join(datasetRoot, DatasetManifestFile)
	if err := fileutil.WriteFileAtomic(manifestPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write dataset manifest: %w", err)
	}

	log.Info("dataset materialized",
		logging.String("root", datasetRoot),
		logging.String("method", string(method)),
		logging.Int("train", doc.Counts[SplitTrain]),
		logging.Int("val", doc.Counts[SplitVal]),
		logging.Int("test", doc.Counts[SplitTest]),
	)
	return doc, nil
}

// eligible keeps episodes with a trajectory, both camera sides, and a
// computed fingerprint. Problem statuses never enter the dataset.
func eligible(row manifest.Row) bool {
	switch row.Status {
	case manifest.StatusNew, manifest.StatusChanged, manifest.StatusUnchanged:
	default:
		return false
	}
	return row.ParquetURI != "" && row.ExistsFront && row.ExistsWrist && row.Fingerprint != ""
}

// place links or copies src to dst, replacing any existing file so reruns
// converge on the current source.
func place(src, dst string, method LinkMethod) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", dst, err)
	}

	switch method {
	case LinkSymlink:
		// Relative targets keep the dataset valid when the tree moves or is
		// mounted elsewhere.
		target, err := filepath.Rel(filepath.Dir(dst), src)
		if err != nil {
			target = src
		}
		if err := os.Symlink(target, dst); err != nil {
			return fmt.Errorf("symlink %s: %w", dst, err)
		}
	case LinkHardlink:
		if err := os.Link(src, dst); err != nil {
			return fmt.Errorf("hardlink %s: %w", dst, err)
		}
	case LinkCopy:
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", dst, err)
		}
	default:
		return fmt.Errorf("unknown link method %q", method)
	}
	return nil
}
