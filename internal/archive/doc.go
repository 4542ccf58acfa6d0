// Package archive classifies archive files by extension.
//
// The set of formats is closed: RAR, ZIP, 7z and Unknown. Classification is
// purely name based so callers can decide which external utility to use before
// touching the file.
package archive
