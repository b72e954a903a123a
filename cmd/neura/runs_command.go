package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"neura/internal/journal"
	"neura/internal/manifest"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent discovery runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No discovery runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				changed := run.Counts[manifest.StatusNew] + run.Counts[manifest.StatusChanged]
				problems := run.Counts[manifest.StatusError] + run.Counts[manifest.StatusMissingSide] +
					run.Counts[manifest.StatusOrphanVideo]
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					fmt.Sprintf("%d", run.Total),
					fmt.Sprintf("%d", changed),
					fmt.Sprintf("%d", problems),
					fmt.Sprintf("%d", run.Workers),
					yesNo(run.FullHash),
					run.Duration.Round(time.Millisecond).String(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					column("Started"), numericColumn("Rows"), numericColumn("New/Changed"),
					numericColumn("Problems"), numericColumn("Workers"), column("Full Hash"),
					numericColumn("Duration"),
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to display")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit runs as JSON")
	return cmd
}
