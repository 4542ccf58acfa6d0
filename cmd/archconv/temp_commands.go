package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"archconv/internal/staging"
)

func newTempCommand(ctx *commandContext) *cobra.Command {
	tempCmd := &cobra.Command{
		Use:   "temp",
		Short: "Manage working folders under the temp root",
	}

	tempCmd.AddCommand(newTempListCommand(ctx))
	tempCmd.AddCommand(newTempCleanCommand(ctx))

	return tempCmd
}

func newTempListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List working folders left by conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			tempDir := strings.TrimSpace(cfg.Paths.TempDir)
			dirs, err := staging.ListDirectories(tempDir)
			if err != nil {
				return fmt.Errorf("list working folders: %w", err)
			}

			var totalSize int64
			for _, dir := range dirs {
				totalSize += dir.Size
			}

			if ctx.JSONMode() {
				if dirs == nil {
					dirs = []staging.DirInfo{}
				}
				return writeJSON(cmd, map[string]any{
					"temp_dir":         tempDir,
					"directories":      dirs,
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No working folders found")
				return nil
			}

			fmt.Fprintf(out, "Temp directory: %s\n\n", tempDir)
			fmt.Fprint(out, renderTable(folderColumns, folderRows(dirs, time.Now())))
			fmt.Fprintf(out, "\nTotal: %d folders, %s\n", len(dirs), formatBytes(totalSize))
			return nil
		},
	}
}

func newTempCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove working folders left by failed conversions",
		Long: `Remove working folders under the temp root that are older than --older-than.

Folders whose conversion is still running are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.TempDir, olderThan, logger)
			if ctx.JSONMode() {
				return writeCleanJSON(cmd, result)
			}
			return printCleanResult(cmd, result)
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Minimum folder age to remove (0 removes all idle folders)")

	return cmd
}

func printCleanResult(cmd *cobra.Command, result staging.CleanStaleResult) error {
	out := cmd.OutOrStdout()
	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d folder(s) in use\n", len(result.Skipped))
	}
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, "No working folders to clean")
		return nil
	}
	fmt.Fprintf(out, "Removed %d working folder(s)", len(result.Removed))
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, ", %d errors\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return nil
	}
	fmt.Fprintln(out)
	return nil
}

func writeCleanJSON(cmd *cobra.Command, result staging.CleanStaleResult) error {
	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
	}
	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	return writeJSON(cmd, map[string]any{
		"removed": len(result.Removed),
		"skipped": skipped,
		"errors":  errs,
	})
}
