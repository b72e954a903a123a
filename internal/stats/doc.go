// Package stats aggregates manifest rows into dataset-level figures.
//
// The stage is manifest-only: trajectory columns stay unread. Output is a
// single global_stats.json under the output directory.
package stats
