package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"neura/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate the manifest into dataset-level figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			global, err := stats.Run(cfg, ctx.loggerValue())
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, global)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(global.ByChunk))
			for _, chunk := range global.ByChunk {
				rows = append(rows, []string{
					"chunk-" + chunk.Chunk,
					fmt.Sprintf("%d", chunk.Episodes),
					fmt.Sprintf("%d", chunk.Complete),
					formatBytes(chunk.Bytes),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					column("Chunk"), numericColumn("Episodes"),
					numericColumn("Complete"), numericColumn("Size"),
				},
				rows,
			))
			fmt.Fprintf(out, "Total: %d episodes across %d chunks, %s (%.0f%% complete)\n",
				global.Episodes, global.Chunks, formatBytes(global.TotalBytes), global.CompleteRatio*100)
			if global.Features != nil {
				fmt.Fprintf(out, "Feature stats: %d features over %d episodes (%d frames)\n",
					len(global.Features.Features), global.Features.EpisodesUsed, global.Features.TotalFrames)
			}
			fmt.Fprintf(out, "Written to %s\n", filepath.Join(cfg.Paths.OutputDir, stats.GlobalStatsFile))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the aggregate as JSON")
	return cmd
}
