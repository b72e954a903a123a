package validation

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RecorderMetaFile is the episode index sidecar the recorder maintains.
const RecorderMetaFile = "episodes.jsonl"

type recorderEpisode struct {
	EpisodeIndex int   `json:"episode_index"`
	Length       int64 `json:"length"`
}

// loadRecorderIndex reads the recorder's episodes.jsonl and returns the
// declared frame length per episode index. A missing sidecar disables the
// check and returns nil; malformed lines are skipped rather than failing
// the stage.
func loadRecorderIndex(metaDir string) (map[int]int64, error) {
	if metaDir == "" {
		return nil, nil
	}
	f, err := os.Open(filepath.Join(metaDir, RecorderMetaFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open recorder meta: %w", err)
	}
	defer f.Close()

	known := map[int]int64{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var episode recorderEpisode
		if err := json.Unmarshal(line, &episode); err != nil {
			continue
		}
		known[episode.EpisodeIndex] = episode.Length
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recorder meta: %w", err)
	}
	return known, nil
}
