// Package preflight verifies the environment before pipeline stages run.
//
// Checks cover directory permissions, free disk space, and the external
// ffprobe binary. Results are advisory; the CLI renders them and exits
// nonzero when a required check fails.
package preflight
