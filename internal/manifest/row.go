package manifest

import (
	"fmt"
	"sort"
	"time"
)

// Key identifies an episode within a manifest.
type Key struct {
	Chunk        string
	EpisodeIndex int
}

func (k Key) String() string {
	return fmt.Sprintf("chunk-%s/%06d", k.Chunk, k.EpisodeIndex)
}

// RowError is the structured diagnostic attached to ERROR rows.
type RowError struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Row is one episode observation. EpisodeIndex -1 is reserved for rows
// whose filename could not be parsed; such rows carry no usable key.
type Row struct {
	EpisodeIndex    int       `json:"episode_index"`
	Chunk           string    `json:"chunk"`
	ParquetURI      string    `json:"parquet_uri,omitempty"`
	VideoFrontURI   string    `json:"video_front_uri,omitempty"`
	VideoWristURI   string    `json:"video_wrist_uri,omitempty"`
	ExistsFront     bool      `json:"exists_front"`
	ExistsWrist     bool      `json:"exists_wrist"`
	BytesTotal      int64     `json:"bytes_total"`
	Fingerprint     string    `json:"fingerprint,omitempty"`
	FingerprintAlgo string    `json:"fingerprint_algo"`
	DiscoveredAt    time.Time `json:"discovered_at"`
	Status          Status    `json:"status"`
	Errors          *RowError `json:"errors,omitempty"`
}

func (r Row) Key() Key {
	return Key{Chunk: r.Chunk, EpisodeIndex: r.EpisodeIndex}
}

// HasKey reports whether the row carries a usable (chunk, episode) key.
// Rows with an unparseable filename do not take part in key-based diffing.
func (r Row) HasKey() bool {
	return r.EpisodeIndex >= 0
}

// SortRows orders rows by (chunk, episode_index) for reproducible output,
// falling back to parquet_uri so unparseable-filename rows sort stably too.
func SortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Chunk != b.Chunk {
			return a.Chunk < b.Chunk
		}
		if a.EpisodeIndex != b.EpisodeIndex {
			return a.EpisodeIndex < b.EpisodeIndex
		}
		return a.ParquetURI < b.ParquetURI
	})
}

// SelectActionable returns exactly the rows downstream stages must
// (re)process, excluding UNCHANGED.
func SelectActionable(rows []Row) []Row {
	var out []Row
	for _, row := range rows {
		if row.Status.IsActionable() {
			out = append(out, row)
		}
	}
	return out
}

// Summarize counts rows per status.
func Summarize(rows []Row) map[Status]int {
	counts := make(map[Status]int, len(allStatuses))
	for _, row := range rows {
		counts[row.Status]++
	}
	return counts
}
