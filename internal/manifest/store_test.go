package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"neura/internal/layout"
)

func sampleManifest(now time.Time) *Manifest {
	return &Manifest{
		Version:     SnapshotVersion,
		GeneratedAt: now,
		Rows: []Row{
			{
				EpisodeIndex:    0,
				Chunk:           "000",
				ParquetURI:      "/robot_data/data/chunk-000/episode_000000.parquet",
				ExistsFront:     true,
				ExistsWrist:     true,
				BytesTotal:      2048,
				Fingerprint:     "abc",
				FingerprintAlgo: "test-v1",
				DiscoveredAt:    now,
				Status:          StatusNew,
			},
			{
				EpisodeIndex:    5,
				Chunk:           "000",
				FingerprintAlgo: "test-v1",
				DiscoveredAt:    now,
				Status:          StatusDeleted,
			},
		},
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest", "episodes.json")
	now := time.Now().UTC().Truncate(time.Second)

	m := sampleManifest(now)
	if err := Persist(m, path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil for existing snapshot")
	}
	if len(loaded.Rows) != 2 || loaded.Version != SnapshotVersion {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Rows[0].Fingerprint != "abc" || loaded.Rows[1].Status != StatusDeleted {
		t.Fatalf("rows did not round-trip: %+v", loaded.Rows)
	}
}

func TestLoadMissingIsFirstRun(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "episodes.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m != nil {
		t.Fatal("expected nil manifest on first run")
	}
}

func TestLoadRejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episodes.json")
	payload := `{"version":1,"rows":[{"episode_index":0,"chunk":"000","status":"SPARKLING"}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestPersistReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episodes.json")
	now := time.Now().UTC()

	if err := Persist(sampleManifest(now), path); err != nil {
		t.Fatal(err)
	}
	if err := Persist(&Manifest{Version: SnapshotVersion, GeneratedAt: now}, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Rows) != 0 {
		t.Fatalf("expected empty snapshot, got %d rows", len(loaded.Rows))
	}
}

func TestDiffDeletions(t *testing.T) {
	now := time.Now().UTC()
	rows := DiffDeletions([]Key{{Chunk: "000", EpisodeIndex: 5}}, now, "test-v1")
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Status != StatusDeleted || row.Fingerprint != "" || row.ParquetURI != "" ||
		row.ExistsFront || row.ExistsWrist || row.BytesTotal != 0 {
		t.Fatalf("deleted row not cleared: %+v", row)
	}
	if row.Chunk != "000" || row.EpisodeIndex != 5 {
		t.Fatalf("deleted row key = %+v", row.Key())
	}
}

func TestDiffOrphans(t *testing.T) {
	root := t.TempDir()
	tree := layout.NewTree(root)

	write := func(path string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// Episode 0 has a trajectory file in the current scan; episode 9 does not.
	write(tree.VideoPath("000", layout.ViewFront, 0))
	write(tree.VideoPath("000", layout.ViewFront, 9))

	current := map[Key]struct{}{{Chunk: "000", EpisodeIndex: 0}: {}}
	rows, err := DiffOrphans(tree, []string{"000"}, current, time.Now().UTC(), "test-v1")
	if err != nil {
		t.Fatalf("DiffOrphans: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v, want exactly one orphan", rows)
	}
	row := rows[0]
	if row.Status != StatusOrphanVideo || row.EpisodeIndex != 9 {
		t.Fatalf("orphan row = %+v", row)
	}
	if !row.ExistsFront || row.ExistsWrist || row.VideoWristURI != "" {
		t.Fatalf("orphan row should reference only the front view: %+v", row)
	}
	if row.Fingerprint != "" || row.BytesTotal != 0 {
		t.Fatalf("orphan row carries fingerprint data: %+v", row)
	}
}

func TestDiffOrphansMergesViewsPerKey(t *testing.T) {
	root := t.TempDir()
	tree := layout.NewTree(root)
	for _, view := range layout.Views() {
		path := tree.VideoPath("001", view, 3)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := DiffOrphans(tree, []string{"001"}, nil, time.Now().UTC(), "test-v1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single merged orphan row, got %d", len(rows))
	}
	if !rows[0].ExistsFront || !rows[0].ExistsWrist {
		t.Fatalf("merged orphan row = %+v", rows[0])
	}
}

func TestSortRowsDeterministic(t *testing.T) {
	rows := []Row{
		{Chunk: "001", EpisodeIndex: 0},
		{Chunk: "000", EpisodeIndex: 2},
		{Chunk: "000", EpisodeIndex: -1, ParquetURI: "/b.parquet"},
		{Chunk: "000", EpisodeIndex: -1, ParquetURI: "/a.parquet"},
		{Chunk: "000", EpisodeIndex: 1},
	}
	SortRows(rows)

	if rows[0].ParquetURI != "/a.parquet" || rows[1].ParquetURI != "/b.parquet" {
		t.Fatalf("unparseable rows not ordered by uri: %+v", rows[:2])
	}
	if rows[2].EpisodeIndex != 1 || rows[3].EpisodeIndex != 2 || rows[4].Chunk != "001" {
		t.Fatalf("rows out of order: %+v", rows)
	}
}
