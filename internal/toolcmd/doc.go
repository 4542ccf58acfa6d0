// Package toolcmd builds command lines for the external archive utilities.
//
// Each builder knows one program's CLI (unrar, rar, 7z) and maps archive and
// destination paths to a process.Command. Builders never run anything; the
// archiver package feeds their commands to a process.Runner. Listing output
// differs per tool, so builders also map raw listing lines to entry names.
package toolcmd
