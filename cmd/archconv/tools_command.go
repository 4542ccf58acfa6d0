package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"archconv/internal/preflight"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Check archive utilities and working directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)
			failed := preflight.Failed(results)

			if ctx.JSONMode() {
				if err := writeJSON(cmd, map[string]any{"checks": results, "failed": len(failed)}); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(checkColumns, checkRows(results)))
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
}
