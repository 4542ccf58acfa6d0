package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"archconv/internal/archive"
	"archconv/internal/history"
	"archconv/internal/logging"
	"archconv/internal/pipeline"
	"archconv/internal/preflight"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		targetFlag  string
		destFlag    string
		tempFlag    string
		optionFlags []string
		noOptions   bool
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "convert <source-archive>",
		Short: "Convert an archive to another format",
		Long: `Convert an archive by extracting it into a working folder under the temp
root and packing that folder into <dest>/<name>.<target ext>.

Options (repeat --option or use a comma list): test_before, test_after,
compare. Without --option the [conversion] options from config apply.

Failed runs leave the working folder and any partial destination in place;
rerunning fails while the destination archive exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, provider, logger, err := ctx.provider()
			if err != nil {
				return err
			}

			source := args[0]
			targetName := cfg.Conversion.TargetFormat
			if strings.TrimSpace(targetFlag) != "" {
				targetName = targetFlag
			}
			target := archive.ParseType(targetName)
			if target == archive.Unknown {
				return fmt.Errorf("unsupported target format %q (want rar, zip or 7z)", targetName)
			}

			dest := destFlag
			if strings.TrimSpace(dest) == "" {
				dest = filepath.Dir(source)
			}
			tempRoot := cfg.Paths.TempDir
			if strings.TrimSpace(tempFlag) != "" {
				tempRoot = tempFlag
			}

			options := cfg.Conversion.Options
			if cmd.Flags().Changed("option") {
				options = splitList(optionFlags)
			}
			if noOptions {
				options = nil
			}

			for _, result := range preflight.Failed(preflight.CheckTools(cfg)) {
				logging.WarnWithContext(logger, "required tool unavailable", "tool_unavailable",
					logging.String("tool", result.Name),
					logging.String("detail", result.Detail),
					logging.Hint("run `archconv tools` for details"),
					logging.Impact("conversion may fail"),
				)
			}

			opts := []pipeline.Option{pipeline.WithLogger(logger)}
			if !noHistory && strings.TrimSpace(cfg.Paths.HistoryDB) != "" {
				store, err := history.Open(cfg.Paths.HistoryDB)
				if err != nil {
					logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
						logging.Path(cfg.Paths.HistoryDB),
						logging.Error(err),
						logging.Impact("this run is not journaled"),
					)
				} else {
					defer store.Close()
					opts = append(opts, pipeline.WithRecorder(store))
				}
			}

			converter, err := pipeline.New(pipeline.Config{
				Source:            source,
				DestinationFolder: dest,
				TargetFormat:      target,
				TempRoot:          tempRoot,
				Options:           pipeline.ParseOptions(options),
			}, provider, opts...)
			if err != nil {
				return err
			}

			view := newProgressView(os.Stderr, converter, ctx.JSONMode())
			state := converter.Convert(cmd.Context(), view.listeners(false))
			view.finish(state.Success())

			if ctx.JSONMode() {
				if err := writeJSON(cmd, runRecordFromState(converter, state)); err != nil {
					return err
				}
			} else if state.Success() {
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s (%d entries)\n",
					converter.SourceArchive(), converter.DestinationArchive(), converter.SourceEntries())
			}
			if !state.Success() {
				return fmt.Errorf("conversion failed at %s: %w", state.Step, state.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetFlag, "to", "t", "", "Target format: rar, zip or 7z (default from config)")
	cmd.Flags().StringVarP(&destFlag, "dest", "d", "", "Destination folder (default: the source's folder)")
	cmd.Flags().StringVar(&tempFlag, "temp", "", "Temp root for the working folder (default from config)")
	cmd.Flags().StringSliceVarP(&optionFlags, "option", "o", nil, "Optional step: test_before, test_after, compare")
	cmd.Flags().BoolVar(&noOptions, "no-options", false, "Skip every optional step")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not journal this run")
	return cmd
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
