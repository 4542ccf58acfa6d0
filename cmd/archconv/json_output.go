package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"archconv/internal/archive"
	"archconv/internal/history"
	"archconv/internal/pipeline"
	"archconv/internal/services"
)

// runRecord is the JSON form of one conversion, live or journaled.
type runRecord struct {
	RunID        string `json:"run_id"`
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	TargetFormat string `json:"target_format"`
	Step         string `json:"step"`
	Success      bool   `json:"success"`
	Entries      int    `json:"entries"`
	Error        string `json:"error,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
	StartedAt    string `json:"started_at,omitempty"`
	FinishedAt   string `json:"finished_at,omitempty"`
}

func runRecordFromState(c *pipeline.Converter, state pipeline.State) runRecord {
	rec := runRecord{
		RunID:        c.RunID(),
		Source:       c.SourceArchive(),
		Destination:  c.DestinationArchive(),
		TargetFormat: formatName(archive.TypeOf(c.DestinationArchive())),
		Step:         state.Step.String(),
		Success:      state.Success(),
		Entries:      c.SourceEntries(),
	}
	if state.Err != nil {
		rec.Error = state.Err.Error()
		rec.ErrorKind = services.Kind(state.Err)
	}
	return rec
}

func runRecordFromEntry(e history.Entry) runRecord {
	return runRecord{
		RunID:        e.ID,
		Source:       e.Source,
		Destination:  e.Destination,
		TargetFormat: e.TargetFormat,
		Step:         e.Step,
		Success:      e.Success(),
		Entries:      e.SourceEntries,
		Error:        e.ErrorMessage,
		ErrorKind:    e.ErrorKind,
		StartedAt:    e.StartedAt.Format(time.RFC3339),
		FinishedAt:   e.FinishedAt.Format(time.RFC3339),
	}
}

// runRecords never returns nil so an empty journal encodes as [].
func runRecords(entries []history.Entry) []runRecord {
	out := make([]runRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, runRecordFromEntry(e))
	}
	return out
}

// entryListing is the JSON form of `archconv list`.
type entryListing struct {
	Archive string   `json:"archive"`
	Count   int      `json:"count"`
	Entries []string `json:"entries"`
}

// engineRun is the JSON form of a single extract or pack call.
type engineRun struct {
	Archive string `json:"archive"`
	Folder  string `json:"folder"`
	Lines   int64  `json:"lines"`
}

// formatName is the lowercase extension used in tables and JSON ("zip").
func formatName(t archive.Type) string {
	return strings.TrimPrefix(t.Ext(), ".")
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
