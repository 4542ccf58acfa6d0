// Package logging assembles structured slog loggers and formatting helpers used
// across archconv.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so engine and pipeline code can tag log
// lines with the archive, step, and run correlation ID. The package also
// provides a no-op logger for tests and wiring code that cannot fail, a
// progress sampler that keeps per-line tool output from flooding INFO logs,
// and retention helpers for leftover transcript files.
package logging
