package main

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"archconv/internal/history"
	"archconv/internal/preflight"
	"archconv/internal/staging"
)

// column is one table column. Numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

var (
	runColumns = []column{
		{title: "Finished"}, {title: "Source"}, {title: "To"},
		{title: "Entries", numeric: true}, {title: "Took", numeric: true}, {title: "Result"},
	}
	folderColumns = []column{
		{title: "Folder"}, {title: "Age", numeric: true}, {title: "Files", numeric: true},
		{title: "Size", numeric: true}, {title: "In use"},
	}
	checkColumns = []column{{title: "Check"}, {title: "OK"}, {title: "Detail"}}
	entryColumns = []column{{title: "#", numeric: true}, {title: "Entry"}}
)

// renderTable draws rows under columns. Short rows are padded with blanks.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// runRows formats journaled conversions, one row per run.
func runRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		result := "ok"
		if !e.Success() {
			result = e.Step + " (" + e.ErrorKind + ")"
		}
		rows = append(rows, []string{
			e.FinishedAt.Local().Format("2006-01-02 15:04"),
			filepath.Base(e.Source),
			e.TargetFormat,
			strconv.Itoa(e.SourceEntries),
			e.Duration().Truncate(time.Second).String(),
			result,
		})
	}
	return rows
}

// folderRows formats working folders relative to now.
func folderRows(dirs []staging.DirInfo, now time.Time) [][]string {
	rows := make([][]string, 0, len(dirs))
	for _, dir := range dirs {
		rows = append(rows, []string{
			dir.Name,
			formatDuration(now.Sub(dir.ModTime).Truncate(time.Minute)),
			strconv.Itoa(dir.Files),
			formatBytes(dir.Size),
			yesNo(dir.Locked),
		})
	}
	return rows
}

func checkRows(results []preflight.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Name, yesNo(r.Passed), r.Detail})
	}
	return rows
}

// entryRows numbers archive entries from 1 in listing order.
func entryRows(entries []string) [][]string {
	rows := make([][]string, 0, len(entries))
	for i, name := range entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), name})
	}
	return rows
}
