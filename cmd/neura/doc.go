// Package main hosts the neura CLI entrypoint and command graph.
//
// The Cobra-based command tree drives the recording pipeline stages:
// discovery scans, validation, stats aggregation, dataset materialization,
// environment preflight, and manifest inspection. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
