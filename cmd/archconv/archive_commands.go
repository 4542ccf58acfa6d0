package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"archconv/internal/archive"
	"archconv/internal/archiver"
	"archconv/internal/process"
)

type engineFlags struct {
	timeout   time.Duration
	logFile   string
	appendLog bool
	inherit   bool
}

func (f *engineFlags) register(cmd *cobra.Command, transcript bool) {
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Override the configured timeout (e.g. 90s)")
	cmd.Flags().BoolVar(&f.inherit, "inherit", false, "Attach the tool to this terminal instead of capturing output")
	if transcript {
		cmd.Flags().StringVar(&f.logFile, "log-file", "", "Write the tool transcript to this file")
		cmd.Flags().BoolVar(&f.appendLog, "append-log", false, "Keep the transcript after success")
	}
}

func (f *engineFlags) options(cmd *cobra.Command) []archiver.Option {
	var opts []archiver.Option
	if cmd.Flags().Changed("timeout") {
		opts = append(opts, archiver.WithTimeout(f.timeout))
	}
	if cmd.Flags().Changed("log-file") {
		opts = append(opts, archiver.WithLogFile(f.logFile))
	}
	if cmd.Flags().Changed("append-log") {
		opts = append(opts, archiver.WithAppendLog(f.appendLog))
	}
	if f.inherit {
		opts = append(opts, archiver.WithInheritIO(true))
	}
	return opts
}

// lineListeners echoes tool output to stderr unless quiet.
func lineListeners(quiet bool) process.Listeners {
	if quiet {
		return process.Listeners{}
	}
	return process.Listeners{
		Message: func(line string) {
			fmt.Fprintln(os.Stderr, line)
		},
	}
}

func lookupExtractor(provider archiver.Provider, path string) (archiver.ExtractEngine, error) {
	t := archive.TypeOf(path)
	if t == archive.Unknown {
		return nil, fmt.Errorf("unsupported archive format: %s", path)
	}
	engine, ok := provider.Extractor(t)
	if !ok {
		return nil, fmt.Errorf("no extractor configured for %s archives; run `archconv tools`", t)
	}
	return engine, nil
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var flags engineFlags
	var quiet bool

	cmd := &cobra.Command{
		Use:   "extract <archive> <destination-folder>",
		Short: "Extract an archive into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, provider, _, err := ctx.provider(flags.options(cmd)...)
			if err != nil {
				return err
			}
			engine, err := lookupExtractor(provider, args[0])
			if err != nil {
				return err
			}
			var count int64
			listeners := lineListeners(quiet || ctx.JSONMode())
			listeners.Progress = func(n int64) { count = n }
			if err := engine.ExtractTo(cmd.Context(), args[0], args[1], listeners); err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, engineRun{Archive: args[0], Folder: args[1], Lines: count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s into %s\n", args[0], args[1])
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not echo tool output")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var flags engineFlags
	var asTable bool

	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List the entries of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, provider, _, err := ctx.provider(flags.options(cmd)...)
			if err != nil {
				return err
			}
			engine, err := lookupExtractor(provider, args[0])
			if err != nil {
				return err
			}
			entries, err := engine.FileList(cmd.Context(), args[0], process.Listeners{})
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				if entries == nil {
					entries = []string{}
				}
				return writeJSON(cmd, entryListing{Archive: args[0], Count: len(entries), Entries: entries})
			}
			out := cmd.OutOrStdout()
			if asTable {
				fmt.Fprintln(out, renderTable(entryColumns, entryRows(entries)))
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(out, entry)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Override the configured timeout (e.g. 90s)")
	cmd.Flags().BoolVar(&asTable, "table", false, "Show numbered entries in a table")
	return cmd
}

func newPackCommand(ctx *commandContext) *cobra.Command {
	var flags engineFlags
	var quiet bool

	cmd := &cobra.Command{
		Use:   "pack <source-folder> <archive>",
		Short: "Pack a folder's contents into a new archive",
		Long: `Pack the contents of a folder into an archive. The format follows the
archive's extension. The archive must not be inside the source folder.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, provider, _, err := ctx.provider(flags.options(cmd)...)
			if err != nil {
				return err
			}
			folder, target := args[0], args[1]
			t := archive.TypeOf(target)
			if t == archive.Unknown {
				return fmt.Errorf("unsupported archive format: %s", target)
			}
			engine, ok := provider.Packer(t)
			if !ok {
				return fmt.Errorf("no packer configured for %s archives; run `archconv tools`", t)
			}
			var count int64
			listeners := lineListeners(quiet || ctx.JSONMode())
			listeners.Progress = func(n int64) { count = n }
			if err := engine.PackFolder(cmd.Context(), target, folder, listeners); err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, engineRun{Archive: target, Folder: folder, Lines: count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Packed %s into %s\n", folder, target)
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not echo tool output")
	return cmd
}
