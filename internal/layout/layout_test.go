package layout

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseEpisodeIndex(t *testing.T) {
	cases := []struct {
		path string
		idx  int
		ok   bool
	}{
		{"episode_000005.parquet", 5, true},
		{"/data/chunk-000/episode_000123.parquet", 123, true},
		{"episode_000042.mp4", 42, true},
		{"episode_.parquet", 0, false},
		{"episode_abc.parquet", 0, false},
		{"notes.txt", 0, false},
		{"trial_000001.parquet", 0, false},
	}
	for _, tc := range cases {
		idx, ok := ParseEpisodeIndex(tc.path)
		if idx != tc.idx || ok != tc.ok {
			t.Errorf("ParseEpisodeIndex(%q) = (%d, %v), want (%d, %v)", tc.path, idx, ok, tc.idx, tc.ok)
		}
	}
}

func TestListChunksSorted(t *testing.T) {
	root := t.TempDir()
	for _, chunk := range []string{"002", "000", "001"} {
		if err := os.MkdirAll(filepath.Join(root, "data", "chunk-"+chunk), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	// Non-chunk entries are ignored.
	if err := os.MkdirAll(filepath.Join(root, "data", "scratch"), 0o755); err != nil {
		t.Fatal(err)
	}

	tree := NewTree(root)
	chunks, err := tree.ListChunks()
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	want := []string{"000", "001", "002"}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("chunks = %v, want %v", chunks, want)
	}
}

func TestListChunksMissingDataDir(t *testing.T) {
	tree := NewTree(t.TempDir())
	chunks, err := tree.ListChunks()
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %v", chunks)
	}
}

func TestListTrajectoryFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "data", "chunk-000")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"episode_000002.parquet", "episode_000000.parquet", "episode_000001.parquet", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tree := NewTree(root)
	paths, err := tree.ListTrajectoryFiles("000")
	if err != nil {
		t.Fatalf("ListTrajectoryFiles: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 trajectory files, got %d", len(paths))
	}
	for i, path := range paths {
		idx, ok := ParseEpisodeIndex(path)
		if !ok || idx != i {
			t.Fatalf("position %d holds %s", i, path)
		}
	}
}

func TestVideoPath(t *testing.T) {
	tree := NewTree("/robot_data")
	got := tree.VideoPath("003", ViewWrist, 7)
	want := filepath.Join("/robot_data", "videos", "chunk-003", "observation.images.wrist", "episode_000007.mp4")
	if got != want {
		t.Fatalf("VideoPath = %s, want %s", got, want)
	}
}

func TestListVideosSkipsUnparseable(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "videos", "chunk-000", ViewFront.Dir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"episode_000004.mp4", "episode_junk.mp4", "clip.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tree := NewTree(root)
	videos, err := tree.ListVideos("000", ViewFront)
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(videos) != 1 || videos[0].EpisodeIndex != 4 {
		t.Fatalf("videos = %+v", videos)
	}
}

func TestNormalizeChunk(t *testing.T) {
	if got := NormalizeChunk("chunk-007"); got != "007" {
		t.Fatalf("NormalizeChunk(chunk-007) = %s", got)
	}
	if got := NormalizeChunk(" 007 "); got != "007" {
		t.Fatalf("NormalizeChunk(' 007 ') = %s", got)
	}
}
