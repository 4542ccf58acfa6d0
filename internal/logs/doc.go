// Package logs reads the application log and tool transcripts for the
// `archconv logs show` command.
//
// Tail returns the last lines of a file plus the byte offset after them, and
// Follow polls from an offset so a running conversion can be watched. Memory
// stays bounded by the requested line count.
package logs
