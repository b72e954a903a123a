package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"neura/internal/config"
	"neura/internal/manifest"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Run is one completed discovery run.
type Run struct {
	ID           string
	DataRoot     string
	ManifestPath string
	StartedAt    time.Time
	Duration     time.Duration
	Workers      int
	FullHash     bool
	Total        int
	Counts       map[manifest.Status]int
}

// NewRun seeds a run record with a fresh ID and start time.
func NewRun(dataRoot, manifestPath string, workers int, fullHash bool) Run {
	return Run{
		ID:           uuid.NewString(),
		DataRoot:     dataRoot,
		ManifestPath: manifestPath,
		StartedAt:    time.Now().UTC(),
		Workers:      workers,
		FullHash:     fullHash,
	}
}

// Open initializes or connects to the run journal under the log directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "runs.db"))
}

// OpenPath opens the journal database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location backing the journal.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    data_root TEXT NOT NULL,
    manifest_path TEXT NOT NULL,
    started_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    workers INTEGER NOT NULL,
    full_hash INTEGER NOT NULL,
    total INTEGER NOT NULL,
    new_count INTEGER NOT NULL DEFAULT 0,
    changed_count INTEGER NOT NULL DEFAULT 0,
    unchanged_count INTEGER NOT NULL DEFAULT 0,
    missing_side_count INTEGER NOT NULL DEFAULT 0,
    deleted_count INTEGER NOT NULL DEFAULT 0,
    orphan_count INTEGER NOT NULL DEFAULT 0,
    pending_count INTEGER NOT NULL DEFAULT 0,
    error_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initialize journal schema: %w", err)
	}
	return nil
}

// Record persists one completed run.
func (s *Store) Record(ctx context.Context, run Run) error {
	ctx = ensureContext(ctx)
	counts := run.Counts
	if counts == nil {
		counts = map[manifest.Status]int{}
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO runs (
                id, data_root, manifest_path, started_at, duration_ms,
                workers, full_hash, total,
                new_count, changed_count, unchanged_count, missing_side_count,
                deleted_count, orphan_count, pending_count, error_count
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.DataRoot,
			run.ManifestPath,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.Duration.Milliseconds(),
			run.Workers,
			boolToInt(run.FullHash),
			run.Total,
			counts[manifest.StatusNew],
			counts[manifest.StatusChanged],
			counts[manifest.StatusUnchanged],
			counts[manifest.StatusMissingSide],
			counts[manifest.StatusDeleted],
			counts[manifest.StatusOrphanVideo],
			counts[manifest.StatusPending],
			counts[manifest.StatusError],
		)
		if err != nil {
			return fmt.Errorf("insert run %s: %w", run.ID, err)
		}
		return nil
	})
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, data_root, manifest_path, started_at, duration_ms,
                workers, full_hash, total,
                new_count, changed_count, unchanged_count, missing_side_count,
                deleted_count, orphan_count, pending_count, error_count
           FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			durationMS int64
			fullHash   int
			counts     [8]int
		)
		if err := rows.Scan(
			&run.ID, &run.DataRoot, &run.ManifestPath, &startedAt, &durationMS,
			&run.Workers, &fullHash, &run.Total,
			&counts[0], &counts[1], &counts[2], &counts[3],
			&counts[4], &counts[5], &counts[6], &counts[7],
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			run.StartedAt = ts
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.FullHash = fullHash != 0
		run.Counts = map[manifest.Status]int{
			manifest.StatusNew:         counts[0],
			manifest.StatusChanged:     counts[1],
			manifest.StatusUnchanged:   counts[2],
			manifest.StatusMissingSide: counts[3],
			manifest.StatusDeleted:     counts[4],
			manifest.StatusOrphanVideo: counts[5],
			manifest.StatusPending:     counts[6],
			manifest.StatusError:       counts[7],
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
