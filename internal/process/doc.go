// Package process supervises external archive utilities.
//
// ExecRunner starts one OS process per call, drains stdout and stderr on
// independent goroutines while a timed wait races them, and applies a
// two-phase kill (SIGTERM to the process group, then SIGKILL) when the
// wall-clock budget runs out. Broadcaster converts each output line into a
// progress tick and a message event and appends it to a Transcript file.
//
// A Broadcaster, Transcript and Listeners set belong to exactly one
// invocation; reuse across concurrent invocations is not supported.
package process
