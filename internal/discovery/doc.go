// Package discovery scans a recording data root and maintains the episode
// manifest snapshot.
//
// A run lists chunks, fans episode scans out over a bounded worker pool,
// reconciles the results against the previous snapshot, derives deletion
// and orphan rows, and atomically replaces the manifest. Concurrent runs
// against the same manifest are excluded with a file lock. The returned
// actionable set is what downstream stages must (re)process.
package discovery
