// Package archiver runs archive utilities to extract, list, test, and pack
// archives.
//
// Extractor and Packer pair a toolcmd builder with a process.Runner. Every
// call takes its own process.Listeners, so one engine can serve sequential
// operations without cross-talk. Running two operations on the same engine
// at once is not supported. Failures are classified with the services
// markers: ErrNotFound and ErrInvalidArgument for path preconditions,
// ErrArchive for tool failures, ErrTimeout (also an ErrArchive) when the
// wall-clock bound expires, ErrUnsupported for missing capabilities, and
// ErrIllegalState when the tool binary is missing at construction.
//
// ToolProvider maps archive types to engines built from configuration.
package archiver
