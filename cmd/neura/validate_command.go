package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"neura/internal/manifest"
	"neura/internal/probe"
	"neura/internal/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		all       bool
		skipVideo bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check actionable episodes for structural integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("skip-video") {
				cfg.Validation.SkipVideo = skipVideo
			}

			snapshot, err := manifest.Load(cfg.Paths.ManifestPath)
			if err != nil {
				return err
			}
			if snapshot == nil {
				return fmt.Errorf("no manifest at %s; run discover first", cfg.Paths.ManifestPath)
			}

			rows := snapshot.Rows
			if !all {
				rows = manifest.SelectActionable(rows)
			}

			var prober probe.Prober
			if !cfg.Validation.SkipVideo {
				if !probe.Available() {
					return fmt.Errorf("ffprobe not found on PATH; install it or pass --skip-video")
				}
				prober = probe.FFProbe{}
			}

			summary, _, err := validation.New(cfg, prober, ctx.loggerValue()).Run(cmd.Context(), rows)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]tableColumn{column("Outcome"), numericColumn("Episodes")},
				[][]string{
					{"Passed", fmt.Sprintf("%d", summary.Passed)},
					{"Failed", fmt.Sprintf("%d", summary.Failed)},
					{"Skipped", fmt.Sprintf("%d", summary.Skipped)},
				},
			))
			if summary.Failed > 0 {
				fmt.Fprintf(out, "Failure details: %s\n", filepath.Join(cfg.Paths.OutputDir, "failures.jsonl"))
			}
			fmt.Fprintf(out, "Validated episodes: %s\n", filepath.Join(cfg.Paths.OutputDir, "validated_episodes.jsonl"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Validate every manifest row, not just actionable ones")
	cmd.Flags().BoolVar(&skipVideo, "skip-video", false, "Skip ffprobe video checks")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the summary as JSON")
	return cmd
}
