package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"archconv/internal/logging"
	"archconv/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage transcripts and log files",
	}
	logsCmd.AddCommand(newLogsShowCommand(ctx))
	logsCmd.AddCommand(newLogsListCommand(ctx))
	logsCmd.AddCommand(newLogsPruneCommand(ctx))
	return logsCmd
}

func newLogsPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old transcripts from the temp root and log directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Logging.RetentionDays
			}
			active := filepath.Join(cfg.Paths.LogDir, "archconv.log")
			removed := logging.PruneOld(logger, time.Now(), days,
				logging.RetentionTarget{Dir: cfg.Paths.TempDir, Pattern: "*.log"},
				logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "*.log", Exclude: []string{active}},
			)
			if ctx.JSONMode() {
				if removed == nil {
					removed = []string{}
				}
				return writeJSON(cmd, map[string]any{"removed": removed})
			}
			out := cmd.OutOrStdout()
			if len(removed) == 0 {
				fmt.Fprintln(out, "No transcripts to prune")
				return nil
			}
			for _, path := range removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (default: logging.retention_days)")
	return cmd
}

func newLogsShowCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print the end of the application log or a transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, "archconv.log")
			if len(args) == 1 {
				path = args[0]
			}
			result, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, result.Offset, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	return cmd
}

func newLogsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transcripts in the temp root and log directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			paths, err := logs.Transcripts(cfg.Paths.TempDir, cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				if paths == nil {
					paths = []string{}
				}
				return writeJSON(cmd, map[string]any{"transcripts": paths})
			}
			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintln(out, "No transcripts found")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}
