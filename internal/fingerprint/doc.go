// Package fingerprint computes compact, deterministic content identities
// for recording files and whole episodes.
//
// File identities combine size, modification time, and a SHA-256 digest of a
// bounded head (and, for large files, tail) sample so multi-gigabyte videos
// fingerprint in constant time while truncations and appends are still
// detected. Episode identities digest a canonical serialization of the
// per-file identities, so the result is independent of map iteration order
// and changes whenever any constituent file changes.
//
// The package also hosts the stability heuristic that decides whether a file
// is still being written by the upstream recorder.
package fingerprint
