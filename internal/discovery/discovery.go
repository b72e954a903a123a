package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"neura/internal/config"
	"neura/internal/fingerprint"
	"neura/internal/journal"
	"neura/internal/layout"
	"neura/internal/logging"
	"neura/internal/manifest"
)

// StabilityChecker reports whether a file has stopped growing.
// fingerprint.StabilityChecker is the production implementation.
type StabilityChecker interface {
	IsStable(path string) bool
}

// Options controls a single discovery run.
type Options struct {
	DataRoot     string
	ManifestPath string
	Workers      int
	FullHash     bool

	// Since skips rescanning episodes whose trajectory file predates it.
	// Zero means scan everything.
	Since time.Time

	// OnlyChunks restricts the scan to the named chunks. Empty means all.
	OnlyChunks []string

	// Stability defaults to fingerprint.DefaultStability when nil.
	Stability StabilityChecker
	Logger    *slog.Logger
	Journal   *journal.Store
}

// OptionsFromConfig seeds run options from the resolved configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataRoot:     cfg.Paths.DataRoot,
		ManifestPath: cfg.Paths.ManifestPath,
		Workers:      cfg.Discovery.Workers,
		FullHash:     cfg.Discovery.FullHash,
		Stability: fingerprint.StabilityChecker{
			MinBytes: cfg.Discovery.StabilityMinBytes,
			Pause:    time.Duration(cfg.Discovery.StabilityPauseMS) * time.Millisecond,
		},
	}
}

// Result is the outcome of one discovery run.
type Result struct {
	RunID      string
	Rows       []manifest.Row
	Actionable []manifest.Row
	Counts     map[manifest.Status]int
	Duration   time.Duration
}

// ErrLocked indicates another discovery run holds the manifest lock.
var ErrLocked = errors.New("another discovery run holds the manifest lock")

// Run executes one full discovery pass and atomically replaces the
// manifest snapshot. Journal write failures are logged, never fatal.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.DataRoot == "" {
		return nil, errors.New("data root is required")
	}
	if opts.ManifestPath == "" {
		return nil, errors.New("manifest path is required")
	}
	workers := clampWorkers(opts.Workers)
	stability := opts.Stability
	if stability == nil {
		stability = fingerprint.DefaultStability
	}
	logger := logging.NewComponentLogger(opts.Logger, "discovery")

	started := time.Now()
	now := started.UTC()
	run := journal.NewRun(opts.DataRoot, opts.ManifestPath, workers, opts.FullHash)

	if err := os.MkdirAll(filepath.Dir(opts.ManifestPath), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest directory: %w", err)
	}

	lock := flock.New(opts.ManifestPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire manifest lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("failed to release manifest lock", logging.Error(unlockErr))
		}
	}()

	previous, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	prevRows := previous.RowsByKey()

	tree := layout.NewTree(opts.DataRoot)
	chunks, err := selectChunks(tree, opts.OnlyChunks)
	if err != nil {
		return nil, err
	}
	scannedChunks := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		scannedChunks[chunk] = struct{}{}
	}

	jobs, carried, err := collectJobs(tree, chunks, opts.Since, prevRows)
	if err != nil {
		return nil, err
	}
	logger.Info("scan planned",
		logging.Int("chunks", len(chunks)),
		logging.Int("episodes", len(jobs)),
		logging.Int("carried_forward", len(carried)),
		logging.Int("workers", workers),
	)

	scanned := runPool(ctx, tree, jobs, workers, stability, opts.FullHash, now)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]manifest.Row, 0, len(scanned)+len(carried))
	for _, row := range scanned {
		rows = append(rows, reconcile(row, prevRows))
	}
	rows = append(rows, carried...)

	currentKeys := make(map[manifest.Key]struct{}, len(rows))
	for _, row := range rows {
		if row.HasKey() {
			currentKeys[row.Key()] = struct{}{}
		}
	}

	orphans, err := manifest.DiffOrphans(tree, chunks, currentKeys, now, fingerprint.Algo)
	if err != nil {
		return nil, err
	}
	orphanKeys := make(map[manifest.Key]struct{}, len(orphans))
	for _, row := range orphans {
		orphanKeys[row.Key()] = struct{}{}
	}
	rows = append(rows, orphans...)

	deleted, kept := diffDeletions(tree, previous, scannedChunks, currentKeys, orphanKeys, opts.Since, now)
	rows = append(rows, deleted...)
	rows = append(rows, kept...)

	rows = append(rows, carryUnscanned(previous, scannedChunks)...)

	manifest.SortRows(rows)
	snapshot := &manifest.Manifest{
		Version:     manifest.SnapshotVersion,
		GeneratedAt: now,
		Rows:        rows,
	}
	if err := manifest.Persist(snapshot, opts.ManifestPath); err != nil {
		return nil, err
	}

	counts := manifest.Summarize(rows)
	result := &Result{
		RunID:      run.ID,
		Rows:       rows,
		Actionable: manifest.SelectActionable(rows),
		Counts:     counts,
		Duration:   time.Since(started),
	}

	run.Duration = result.Duration
	run.Total = len(rows)
	run.Counts = counts
	if opts.Journal != nil {
		if err := opts.Journal.Record(ctx, run); err != nil {
			logger.Warn("failed to record run in journal", logging.Error(err))
		}
	}

	logger.Info("scan complete",
		logging.String("run_id", run.ID),
		logging.Int("rows", len(rows)),
		logging.Int("actionable", len(result.Actionable)),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

const maxWorkers = 64

func clampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}

// selectChunks lists chunks under the data root and applies the optional
// chunk filter. Unknown requested chunks are an error, not a silent no-op.
func selectChunks(tree *layout.Tree, only []string) ([]string, error) {
	chunks, err := tree.ListChunks()
	if err != nil {
		return nil, err
	}
	if len(only) == 0 {
		return chunks, nil
	}
	available := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		available[chunk] = struct{}{}
	}
	var selected []string
	for _, raw := range only {
		chunk := layout.NormalizeChunk(raw)
		if _, ok := available[chunk]; !ok {
			return nil, fmt.Errorf("chunk %q not found under data root", chunk)
		}
		selected = append(selected, chunk)
	}
	return selected, nil
}

// collectJobs enumerates trajectory files per chunk in deterministic order.
// With a since cutoff, episodes whose trajectory predates it and that
// already have a manifest row are carried forward instead of rescanned;
// files unknown to the previous snapshot are always scanned.
func collectJobs(tree *layout.Tree, chunks []string, since time.Time, prev map[manifest.Key]manifest.Row) ([]episodeJob, []manifest.Row, error) {
	var jobs []episodeJob
	var carried []manifest.Row
	for _, chunk := range chunks {
		paths, err := tree.ListTrajectoryFiles(chunk)
		if err != nil {
			return nil, nil, err
		}
		for _, path := range paths {
			if !since.IsZero() {
				if index, ok := layout.ParseEpisodeIndex(path); ok {
					if info, statErr := os.Stat(path); statErr == nil && info.ModTime().Before(since) {
						key := manifest.Key{Chunk: chunk, EpisodeIndex: index}
						if row, known := prev[key]; known {
							carried = append(carried, row)
							continue
						}
					}
				}
			}
			jobs = append(jobs, episodeJob{chunk: chunk, parquetPath: path})
		}
	}
	return jobs, carried, nil
}

// runPool fans episode scans out over a bounded worker pool. Output order
// is unspecified; the caller sorts.
func runPool(ctx context.Context, tree *layout.Tree, jobs []episodeJob, workers int, stability StabilityChecker, fullHash bool, now time.Time) []manifest.Row {
	if len(jobs) == 0 {
		return nil
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan episodeJob)
	resultCh := make(chan manifest.Row, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				resultCh <- scanEpisode(tree, job, stability, fullHash, now)
			}
		}()
	}

feed:
	for _, job := range jobs {
		select {
		case jobCh <- job:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobCh)
	wg.Wait()
	close(resultCh)

	rows := make([]manifest.Row, 0, len(jobs))
	for row := range resultCh {
		rows = append(rows, row)
	}
	return rows
}

// diffDeletions finds previously known keys in scanned chunks that neither
// the scan nor the orphan pass accounts for. With a since cutoff active the
// scan is partial, so each candidate's trajectory file is stat-confirmed
// gone before a DELETED row is emitted; still-present files keep their
// previous row.
func diffDeletions(tree *layout.Tree, previous *manifest.Manifest, scannedChunks map[string]struct{}, currentKeys, orphanKeys map[manifest.Key]struct{}, since time.Time, now time.Time) (deleted, kept []manifest.Row) {
	if previous == nil {
		return nil, nil
	}
	var candidates []manifest.Key
	for _, row := range previous.Rows {
		if !row.HasKey() || row.Status == manifest.StatusDeleted {
			continue
		}
		key := row.Key()
		if _, ok := scannedChunks[key.Chunk]; !ok {
			continue
		}
		if _, ok := currentKeys[key]; ok {
			continue
		}
		if _, ok := orphanKeys[key]; ok {
			continue
		}
		if !since.IsZero() {
			if _, err := os.Stat(tree.TrajectoryPath(key.Chunk, key.EpisodeIndex)); err == nil {
				kept = append(kept, row)
				continue
			}
		}
		candidates = append(candidates, key)
	}
	return manifest.DiffDeletions(candidates, now, fingerprint.Algo), kept
}

// carryUnscanned preserves previous rows from chunks outside this run's
// scope so a filtered scan never loses history.
func carryUnscanned(previous *manifest.Manifest, scannedChunks map[string]struct{}) []manifest.Row {
	if previous == nil {
		return nil
	}
	var rows []manifest.Row
	for _, row := range previous.Rows {
		if _, ok := scannedChunks[row.Chunk]; !ok {
			rows = append(rows, row)
		}
	}
	return rows
}
