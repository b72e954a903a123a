// Package manifest models the persisted snapshot every pipeline stage
// treats as ground truth.
//
// A manifest holds one row per episode observed in the current or previous
// discovery run, keyed by (chunk, episode index). Snapshots are written
// wholesale with a temp-file-then-rename so concurrent readers only ever
// see a fully formed previous-or-new manifest. The Status enum is closed;
// add new statuses here and the exhaustive switches in this package and in
// the discovery resolver will flag the gaps.
package manifest
