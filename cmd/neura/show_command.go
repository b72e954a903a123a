package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neura/internal/manifest"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFlag string
		limit      int
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Inspect manifest rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			snapshot, err := manifest.Load(cfg.Paths.ManifestPath)
			if err != nil {
				return err
			}
			if snapshot == nil {
				return fmt.Errorf("no manifest at %s; run discover first", cfg.Paths.ManifestPath)
			}

			filter, err := parseStatusFilter(statusFlag)
			if err != nil {
				return err
			}
			rows := filterRows(snapshot.Rows, filter)
			total := len(rows)
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}

			if jsonOut {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				episode := fmt.Sprintf("%06d", row.EpisodeIndex)
				if !row.HasKey() {
					episode = "?"
				}
				detail := ""
				if row.Errors != nil {
					detail = row.Errors.Reason
				}
				tableRows = append(tableRows, []string{
					"chunk-" + row.Chunk,
					episode,
					statusLabel(row.Status),
					yesNo(row.ExistsFront),
					yesNo(row.ExistsWrist),
					formatBytes(row.BytesTotal),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					column("Chunk"), numericColumn("Episode"), column("Status"),
					column("Front"), column("Wrist"), numericColumn("Size"), column("Detail"),
				},
				tableRows,
			))
			if len(rows) < total {
				fmt.Fprintf(out, "Showing %d of %d rows (raise --limit for more)\n", len(rows), total)
			}
			fmt.Fprintf(out, "Manifest generated at %s\n", snapshot.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Filter by status, comma separated (e.g. new,changed)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows to display (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit rows as JSON")
	return cmd
}

func filterRows(rows []manifest.Row, statuses []manifest.Status) []manifest.Row {
	if len(statuses) == 0 {
		return rows
	}
	wanted := make(map[manifest.Status]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}
	var out []manifest.Row
	for _, row := range rows {
		if _, ok := wanted[row.Status]; ok {
			out = append(out, row)
		}
	}
	return out
}
