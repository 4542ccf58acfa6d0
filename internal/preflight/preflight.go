package preflight

import (
	"strings"

	"archconv/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir))
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", dir))
	}
	results = append(results, CheckTools(cfg)...)
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
