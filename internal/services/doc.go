// Package services defines shared utilities consumed by the archive engines,
// the conversion pipeline, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp archive paths, step names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures keep one
//     classification surface (not found, invalid argument, archive, timeout,
//     unsupported, illegal state, interrupted) no matter which layer raised them.
//
// Use these helpers when wiring new tool integrations so error handling and
// observability stay uniform.
package services
