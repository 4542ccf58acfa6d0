// Package pipeline converts an archive from one format to another by
// composing extraction and packing into a linear sequence of steps:
//
//	START -> [TEST_BEFORE] -> EXTRACTING -> PACKING -> [TEST_AFTER] -> [COMPARE] -> ALL
//
// Each run stops at the first failing step and records exactly one terminal
// State. Completed steps are never rolled back; a destination archive written
// by PACKING stays in place when a later step fails. The working folder is
// removed only after full success, so failed runs leave the folder and any
// extraction transcript for inspection.
//
// A Converter is single-use per conversion and not safe for concurrent use.
package pipeline
