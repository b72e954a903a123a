// Package materialize lays out train/val/test dataset trees from the
// manifest.
//
// Split assignment hashes (seed, chunk, episode), so membership is stable
// across runs and machines as long as the seed and ratios hold. Placement
// is symlink, hardlink, or copy; manifest-only emits the assignment file
// without touching episode data.
package materialize
