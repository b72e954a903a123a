package discovery

import (
	"os"
	"time"

	"neura/internal/fingerprint"
	"neura/internal/layout"
	"neura/internal/manifest"
)

// episodeJob is one trajectory file queued for scanning.
type episodeJob struct {
	chunk       string
	parquetPath string
}

// scanEpisode inspects one episode: resolves which of the expected files
// exist, checks write stability, fingerprints the present files, and
// classifies the result. Video URIs are recorded only for files that exist,
// and bytes_total sums exactly the fingerprinted files, so PENDING and
// ERROR rows carry zero. It never returns an error; failures are encoded
// on the row.
func scanEpisode(tree *layout.Tree, job episodeJob, stability StabilityChecker, fullHash bool, now time.Time) manifest.Row {
	index, ok := layout.ParseEpisodeIndex(job.parquetPath)
	if !ok {
		return manifest.Row{
			EpisodeIndex:    -1,
			Chunk:           job.chunk,
			ParquetURI:      job.parquetPath,
			FingerprintAlgo: fingerprint.Algo,
			DiscoveredAt:    now,
			Status:          manifest.StatusError,
			Errors:          &manifest.RowError{Reason: "bad_episode_name", Detail: job.parquetPath},
		}
	}

	row := manifest.Row{
		EpisodeIndex:    index,
		Chunk:           job.chunk,
		ParquetURI:      job.parquetPath,
		FingerprintAlgo: fingerprint.Algo,
		DiscoveredAt:    now,
	}

	present := map[string]string{"parquet": job.parquetPath}
	if path := tree.VideoPath(job.chunk, layout.ViewFront, index); fileExists(path) {
		row.ExistsFront = true
		row.VideoFrontURI = path
		present["video_front"] = path
	}
	if path := tree.VideoPath(job.chunk, layout.ViewWrist, index); fileExists(path) {
		row.ExistsWrist = true
		row.VideoWristURI = path
		present["video_wrist"] = path
	}

	pending := false
	for _, path := range present {
		if !stability.IsStable(path) {
			pending = true
			break
		}
	}

	var fpErr error
	if !pending {
		parts := make(map[string]fingerprint.Part, len(present))
		for name, path := range present {
			part, err := fingerprint.File(path, fullHash)
			if err != nil {
				fpErr = err
				break
			}
			parts[name] = part
		}
		if fpErr == nil {
			row.Fingerprint = fingerprint.Combine(parts)
			for _, part := range parts {
				row.BytesTotal += part.Size
			}
		} else {
			row.Errors = &manifest.RowError{Reason: "fingerprint_failed", Detail: fpErr.Error()}
		}
	}

	row.Status = resolveStatus(fpErr != nil, pending, row.ExistsFront, row.ExistsWrist)
	return row
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
