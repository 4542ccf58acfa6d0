package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RetentionTarget names a directory and filename pattern to prune.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// PruneOld removes files matching targets whose modification time is older
// than retentionDays relative to now. It returns the removed paths in sorted
// order. A retentionDays value of 0 or less disables pruning. Unreadable
// directories are skipped; failed removals are logged and left in place.
func PruneOld(logger *slog.Logger, now time.Time, retentionDays int, targets ...RetentionTarget) []string {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := now.AddDate(0, 0, -retentionDays)

	excluded := make(map[string]struct{})
	for _, target := range targets {
		for _, path := range target.Exclude {
			if trimmed := strings.TrimSpace(path); trimmed != "" {
				if abs, err := filepath.Abs(trimmed); err == nil {
					excluded[abs] = struct{}{}
				}
			}
		}
	}

	var removed []string
	for _, target := range targets {
		dir := strings.TrimSpace(target.Dir)
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if pattern := strings.TrimSpace(target.Pattern); pattern != "" {
				if matched, err := filepath.Match(pattern, name); err != nil || !matched {
					continue
				}
			}
			full := filepath.Join(dir, name)
			if abs, err := filepath.Abs(full); err == nil {
				full = abs
			}
			if _, skip := excluded[full]; skip {
				continue
			}
			info, err := entry.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(full); err != nil {
				WarnWithContext(logger, "log prune failed; file remains", "log_prune_failed",
					Path(full),
					Error(err),
					Hint("check file permissions in the log directory"),
					Impact("old log file remains on disk"),
				)
				continue
			}
			if logger != nil {
				logger.Info("log pruned", Path(full), Event("log_pruned"))
			}
			removed = append(removed, full)
		}
	}
	sort.Strings(removed)
	return removed
}
