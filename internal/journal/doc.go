// Package journal persists discovery run history in SQLite.
//
// The manifest snapshot is ground truth for episode state; the journal is
// observability only. Each completed discovery run records its options,
// duration, and per-status row counts so operators can inspect scan
// behavior over time (neura runs). Journal write failures never fail a run.
package journal
