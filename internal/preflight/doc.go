// Package preflight provides readiness checks for the filesystem paths and
// archive utilities archconv depends on.
//
// The convert command runs RunAll before starting so a missing tool or an
// unwritable temp directory is reported up front, and the tools command
// prints every result.
package preflight
