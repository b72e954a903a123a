package testsupport

import (
	"fmt"
	"testing"

	"neura/internal/layout"
)

// EpisodeOption tweaks the files SeedEpisode lays down.
type EpisodeOption func(*episodeSpec)

type episodeSpec struct {
	front   bool
	wrist   bool
	content string
}

// WithoutFront omits the front camera video.
func WithoutFront() EpisodeOption {
	return func(s *episodeSpec) { s.front = false }
}

// WithoutWrist omits the wrist camera video.
func WithoutWrist() EpisodeOption {
	return func(s *episodeSpec) { s.wrist = false }
}

// WithContent varies the file payloads so fingerprints differ between
// seedings of the same episode.
func WithContent(content string) EpisodeOption {
	return func(s *episodeSpec) { s.content = content }
}

// SeedEpisode lays down a trajectory parquet plus camera videos for one
// episode under the given data root, creating the chunk directories on
// demand. Returns the trajectory path.
func SeedEpisode(t testing.TB, root, chunk string, index int, opts ...EpisodeOption) string {
	t.Helper()

	spec := episodeSpec{front: true, wrist: true, content: "v1"}
	for _, opt := range opts {
		opt(&spec)
	}

	tree := layout.NewTree(root)
	trajectory := tree.TrajectoryPath(chunk, index)
	WriteFile(t, trajectory, []byte(fmt.Sprintf("parquet %s/%d %s", chunk, index, spec.content)))
	if spec.front {
		path := tree.VideoPath(chunk, layout.ViewFront, index)
		WriteFile(t, path, []byte(fmt.Sprintf("front %s/%d %s", chunk, index, spec.content)))
	}
	if spec.wrist {
		path := tree.VideoPath(chunk, layout.ViewWrist, index)
		WriteFile(t, path, []byte(fmt.Sprintf("wrist %s/%d %s", chunk, index, spec.content)))
	}
	return trajectory
}

// SeedStrayVideo writes a camera video with no matching trajectory file.
func SeedStrayVideo(t testing.TB, root, chunk string, index int, view layout.View) string {
	t.Helper()

	tree := layout.NewTree(root)
	path := tree.VideoPath(chunk, view, index)
	WriteFile(t, path, []byte(fmt.Sprintf("stray %s/%d", chunk, index)))
	return path
}
