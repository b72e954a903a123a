package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"neura/internal/fileutil"
	"neura/internal/layout"
)

// SnapshotVersion is bumped when the snapshot document shape changes.
const SnapshotVersion = 1

// Manifest is the full snapshot of one discovery run.
type Manifest struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
}

// Load reads a previous snapshot. A missing file is not an error: it is the
// first run and the result is nil. Any other failure is fatal to the run.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	for i := range m.Rows {
		if !m.Rows[i].Status.Valid() {
			return nil, fmt.Errorf("manifest %s: row %d carries unknown status %q", path, i, m.Rows[i].Status)
		}
	}
	return &m, nil
}

// Persist writes the snapshot wholesale via a same-directory temp file and
// an atomic rename, so readers never observe a partial manifest.
func Persist(m *Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("persist manifest %s: %w", path, err)
	}
	return nil
}

// Keys returns the set of usable keys in the manifest.
func (m *Manifest) Keys() map[Key]struct{} {
	if m == nil {
		return nil
	}
	keys := make(map[Key]struct{}, len(m.Rows))
	for _, row := range m.Rows {
		if row.HasKey() {
			keys[row.Key()] = struct{}{}
		}
	}
	return keys
}

// RowsByKey indexes rows by key, skipping rows without a usable key.
func (m *Manifest) RowsByKey() map[Key]Row {
	if m == nil {
		return nil
	}
	byKey := make(map[Key]Row, len(m.Rows))
	for _, row := range m.Rows {
		if row.HasKey() {
			byKey[row.Key()] = row
		}
	}
	return byKey
}

// DiffDeletions materializes DELETED rows for previously known keys absent
// from the current scan. File fields are cleared and no fingerprint is
// carried; the caller decides which keys are eligible.
func DiffDeletions(keys []Key, now time.Time, algo string) []Row {
	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, Row{
			EpisodeIndex:    key.EpisodeIndex,
			Chunk:           key.Chunk,
			FingerprintAlgo: algo,
			DiscoveredAt:    now,
			Status:          StatusDeleted,
		})
	}
	return rows
}

// DiffOrphans scans the video directories of the given chunks and emits one
// ORPHAN_VIDEO row per video whose (chunk, episode) key has no trajectory
// file in the current scan. Each orphan row references only the camera view
// it was found under; when both views are stray for the same key the single
// row records both, keeping keys unique within the manifest. Orphan rows
// never carry a fingerprint, and bytes_total stays zero because nothing was
// fingerprinted.
func DiffOrphans(tree *layout.Tree, chunks []string, currentKeys map[Key]struct{}, now time.Time, algo string) ([]Row, error) {
	byKey := make(map[Key]*Row)
	var order []Key
	for _, chunk := range chunks {
		for _, view := range layout.Views() {
			videos, err := tree.ListVideos(chunk, view)
			if err != nil {
				return nil, err
			}
			for _, video := range videos {
				key := Key{Chunk: chunk, EpisodeIndex: video.EpisodeIndex}
				if _, known := currentKeys[key]; known {
					continue
				}
				row, seen := byKey[key]
				if !seen {
					row = &Row{
						EpisodeIndex:    video.EpisodeIndex,
						Chunk:           chunk,
						FingerprintAlgo: algo,
						DiscoveredAt:    now,
						Status:          StatusOrphanVideo,
					}
					byKey[key] = row
					order = append(order, key)
				}
				switch view {
				case layout.ViewFront:
					row.VideoFrontURI = video.Path
					row.ExistsFront = true
				case layout.ViewWrist:
					row.VideoWristURI = video.Path
					row.ExistsWrist = true
				}
			}
		}
	}
	rows := make([]Row, 0, len(order))
	for _, key := range order {
		rows = append(rows, *byKey[key])
	}
	return rows, nil
}
