// Package layout maps the on-disk shape of a recording tree.
//
// A data root contains data/chunk-<id>/episode_<6digit>.parquet trajectory
// files and videos/chunk-<id>/<camera-dir>/episode_<6digit>.mp4 camera
// recordings. Two camera views are recorded per episode: front and wrist.
// The package only resolves and enumerates paths; existence checks and
// content inspection belong to the callers.
package layout
