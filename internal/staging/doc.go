// Package staging manages the per-conversion working folders under the temp
// root: creating them, removing them after success, pruning stale ones left
// by failed runs, and the flock-based run lock that keeps two conversions of
// the same archive name from sharing a folder.
package staging
