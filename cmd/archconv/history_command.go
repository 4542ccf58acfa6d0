package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"archconv/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), limit, failedOnly)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, runRecords(entries))
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No conversions recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(runColumns, runRows(entries)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed runs")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one conversion in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				entry, found, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("run %s not found", args[0])
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, runRecordFromEntry(entry))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:         %s\n", entry.ID)
				fmt.Fprintf(out, "Source:      %s\n", entry.Source)
				fmt.Fprintf(out, "Destination: %s\n", entry.Destination)
				fmt.Fprintf(out, "Entries:     %d\n", entry.SourceEntries)
				fmt.Fprintf(out, "Started:     %s\n", entry.StartedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Finished:    %s\n", entry.FinishedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Step:        %s\n", entry.Step)
				if !entry.Success() {
					fmt.Fprintf(out, "Error:       %s (%s)\n", entry.ErrorMessage, entry.ErrorKind)
				}
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Logging.RetentionDays
			}
			if days <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Retention disabled; nothing pruned")
				return nil
			}
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -days))
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (default: logging.retention_days)")
	return cmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Paths.HistoryDB) == "" {
		return fmt.Errorf("history disabled: paths.history_db is empty")
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}
