// Command archconv converts archives between RAR, ZIP and 7z by driving the
// installed archive utilities.
//
// Besides convert, it exposes the underlying engines (extract, list, pack),
// tool diagnostics, the run history journal, and housekeeping for the temp
// root and leftover transcripts. Configuration is read from
// ~/.config/archconv/config.toml or ./archconv.toml; see `archconv config init`.
package main
