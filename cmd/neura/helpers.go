package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"neura/internal/manifest"
)

// writeJSON prints v as indented JSON on the command's stdout, for the
// --json flag every reporting command carries.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

var titleCaser = cases.Title(language.Und)

// statusLabel renders a manifest status for tables: MISSING_SIDE becomes
// "Missing Side".
func statusLabel(status manifest.Status) string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(string(status)), "_", " "))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// parseStatusFilter converts comma-separated status names into the enum,
// rejecting unknown values.
func parseStatusFilter(value string) ([]manifest.Status, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	var statuses []manifest.Status
	for _, part := range strings.Split(trimmed, ",") {
		status, ok := manifest.ParseStatus(part)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", strings.TrimSpace(part))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
