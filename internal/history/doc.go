// Package history journals finished conversions in SQLite.
//
// Each pipeline run is one row keyed by its correlation ID, holding the
// terminal step, the error classification, and the source entry count. The
// database is a convenience record for the history command; losing it never
// affects a conversion. Schema changes bump schemaVersion and users delete
// the database to adopt them.
package history
