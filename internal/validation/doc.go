// Package validation checks discovered episodes for structural integrity.
//
// Each actionable episode gets its trajectory file sanity-checked and its
// camera videos probed for frame-rate and frame-count agreement. Results
// land as JSONL files plus a TOML summary under the output directory;
// downstream stages consume validated_episodes.jsonl.
package validation
