package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"neura/internal/discovery"
	"neura/internal/journal"
	"neura/internal/manifest"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var (
		workers   int
		fullHash  bool
		sinceFlag string
		chunks    []string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan the data root and refresh the episode manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := discovery.OptionsFromConfig(cfg)
			opts.Logger = ctx.loggerValue()
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if cmd.Flags().Changed("full-hash") {
				opts.FullHash = fullHash
			}
			opts.OnlyChunks = chunks

			if sinceFlag != "" {
				since, err := parseSince(sinceFlag)
				if err != nil {
					return err
				}
				opts.Since = since
			}

			store, err := journal.Open(cfg)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: run journal unavailable: %v\n", err)
			} else {
				opts.Journal = store
				defer store.Close()
			}

			result, err := discovery.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, discoverReport(result))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Manifest updated: %s\n", opts.ManifestPath)
			fmt.Fprintln(out, renderCounts(result.Counts))
			fmt.Fprintf(out, "Actionable episodes: %d (of %d rows) in %s\n",
				len(result.Actionable), len(result.Rows), result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Fingerprinting worker count (default from config)")
	cmd.Flags().BoolVar(&fullHash, "full-hash", false, "Hash whole files instead of head/tail samples")
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Skip episodes older than a duration (24h) or RFC3339 timestamp")
	cmd.Flags().StringSliceVar(&chunks, "chunk", nil, "Restrict the scan to specific chunks (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run summary as JSON")
	return cmd
}

// parseSince accepts either a relative duration (scan back that far from
// now) or an absolute RFC3339 timestamp.
func parseSince(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if d, err := time.ParseDuration(trimmed); err == nil {
		if d < 0 {
			d = -d
		}
		return time.Now().Add(-d), nil
	}
	ts, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --since %q: want a duration like 24h or an RFC3339 timestamp", value)
	}
	return ts, nil
}

type discoverSummary struct {
	RunID      string                  `json:"run_id"`
	Rows       int                     `json:"rows"`
	Actionable int                     `json:"actionable"`
	Counts     map[manifest.Status]int `json:"counts"`
	DurationMS int64                   `json:"duration_ms"`
}

func discoverReport(result *discovery.Result) discoverSummary {
	return discoverSummary{
		RunID:      result.RunID,
		Rows:       len(result.Rows),
		Actionable: len(result.Actionable),
		Counts:     result.Counts,
		DurationMS: result.Duration.Milliseconds(),
	}
}

func renderCounts(counts map[manifest.Status]int) string {
	var rows [][]string
	for _, status := range manifest.AllStatuses() {
		if counts[status] == 0 {
			continue
		}
		rows = append(rows, []string{statusLabel(status), fmt.Sprintf("%d", counts[status])})
	}
	return renderTable([]tableColumn{column("Status"), numericColumn("Episodes")}, rows)
}
