package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"neura/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check the environment before running pipeline stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cfg)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, result := range results {
				kind := statusOK
				switch {
				case !result.Passed && result.Optional:
					kind = statusWarn
				case !result.Passed:
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if preflight.Failed(results) {
				return errors.New("preflight failed")
			}
			return nil
		},
	}
	return cmd
}
