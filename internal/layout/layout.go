package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// View identifies one camera recorded per episode. Name is the short
// identifier used in manifests and CLI flags; Dir is the recorder's full
// feature name used as the on-disk directory.
type View struct {
	name string
	dir  string
}

var (
	ViewFront = View{name: "front", dir: "observation.images.front"}
	ViewWrist = View{name: "wrist", dir: "observation.images.wrist"}
)

// Views returns the fixed camera views in presentation order.
func Views() []View {
	return []View{ViewFront, ViewWrist}
}

func (v View) Name() string { return v.name }

func (v View) Dir() string { return v.dir }

const (
	chunkPrefix   = "chunk-"
	episodePrefix = "episode_"
	trajectoryExt = ".parquet"
	videoExt      = ".mp4"
)

// Tree resolves paths within one recording data root.
type Tree struct {
	root string
}

func NewTree(root string) *Tree {
	return &Tree{root: root}
}

func (t *Tree) Root() string { return t.root }

func (t *Tree) DataDir() string { return filepath.Join(t.root, "data") }

func (t *Tree) ChunkDir(chunk string) string {
	return filepath.Join(t.DataDir(), chunkPrefix+chunk)
}

func (t *Tree) VideosDir(chunk string) string {
	return filepath.Join(t.root, "videos", chunkPrefix+chunk)
}

// ListChunks enumerates chunk identifiers under the data directory in
// lexicographic order. A missing data directory yields an empty list.
func (t *Tree) ListChunks() ([]string, error) {
	entries, err := os.ReadDir(t.DataDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	var chunks []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), chunkPrefix) {
			continue
		}
		chunks = append(chunks, strings.TrimPrefix(entry.Name(), chunkPrefix))
	}
	sort.Strings(chunks)
	return chunks, nil
}

// ListTrajectoryFiles enumerates trajectory parquet paths within a chunk,
// sorted by filename so episode order follows the zero-padded index.
func (t *Tree) ListTrajectoryFiles(chunk string) ([]string, error) {
	dir := t.ChunkDir(chunk)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list trajectory files for chunk %s: %w", chunk, err)
	}
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, episodePrefix) || !strings.HasSuffix(name, trajectoryExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// TrajectoryPath resolves the expected parquet location for an episode.
// Pure path arithmetic; the file may not exist.
func (t *Tree) TrajectoryPath(chunk string, episode int) string {
	return filepath.Join(t.ChunkDir(chunk), EpisodeFileName(episode)+trajectoryExt)
}

// VideoPath resolves the expected video location for an episode and view.
// Pure path arithmetic; the file may not exist.
func (t *Tree) VideoPath(chunk string, view View, episode int) string {
	return filepath.Join(t.VideosDir(chunk), view.dir, EpisodeFileName(episode)+videoExt)
}

// VideoFile is one discovered camera recording.
type VideoFile struct {
	Path         string
	EpisodeIndex int
}

// ListVideos enumerates the videos present for one chunk and view, sorted by
// filename. Files whose name does not parse to an episode index are skipped.
func (t *Tree) ListVideos(chunk string, view View) ([]VideoFile, error) {
	dir := filepath.Join(t.VideosDir(chunk), view.dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s videos for chunk %s: %w", view.name, chunk, err)
	}
	var videos []VideoFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, videoExt) {
			continue
		}
		idx, ok := ParseEpisodeIndex(name)
		if !ok {
			continue
		}
		videos = append(videos, VideoFile{Path: filepath.Join(dir, name), EpisodeIndex: idx})
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].Path < videos[j].Path })
	return videos, nil
}

// EpisodeFileName renders the canonical zero-padded episode stem.
func EpisodeFileName(index int) string {
	return fmt.Sprintf("%s%06d", episodePrefix, index)
}

// ParseEpisodeIndex extracts the episode index from a trajectory or video
// path. Returns false when the stem does not follow episode_<digits>.
func ParseEpisodeIndex(path string) (int, bool) {
	stem := filepath.Base(path)
	if ext := filepath.Ext(stem); ext != "" {
		stem = strings.TrimSuffix(stem, ext)
	}
	if !strings.HasPrefix(stem, episodePrefix) {
		return 0, false
	}
	digits := strings.TrimPrefix(stem, episodePrefix)
	if digits == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// NormalizeChunk accepts either a bare chunk id or a chunk-<id> directory
// name and returns the bare id.
func NormalizeChunk(value string) string {
	return strings.TrimPrefix(strings.TrimSpace(value), chunkPrefix)
}
