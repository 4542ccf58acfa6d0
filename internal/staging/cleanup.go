package staging

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"archconv/internal/logging"
)

// CleanStaleResult contains the outcome of a stale folder cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Skipped []string
	Errors  []CleanupError
}

// CleanupError pairs a folder path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Prepare creates dir, first removing anything a previous failed run left
// behind so the next pack only sees freshly extracted entries.
func Prepare(dir string, logger *slog.Logger) error {
	if _, err := os.Stat(dir); err == nil {
		if logger != nil {
			logger.Info("removing leftover working folder",
				logging.Path(dir),
				logging.Event("working_folder_reset"),
			)
		}
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Remove deletes dir recursively. A failure is logged and reported as
// false; it never propagates because the conversion already succeeded.
func Remove(dir string, logger *slog.Logger) bool {
	if strings.TrimSpace(dir) == "" {
		return true
	}
	if err := os.RemoveAll(dir); err != nil {
		logging.WarnWithContext(logger, "cannot delete working folder", "working_folder_cleanup_failed",
			logging.Path(dir),
			logging.Error(err),
			logging.Hint("check temp_dir permissions"),
			logging.Impact("disk space not reclaimed"),
		)
		return false
	}
	return true
}

// CleanStale removes working folders under root older than maxAge. Folders
// whose run lock is currently held are skipped.
func CleanStale(ctx context.Context, root string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	root = strings.TrimSpace(root)
	if root == "" {
		return result
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if Locked(root, entry.Name()) {
			result.Skipped = append(result.Skipped, dirPath)
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale working folder", "working_folder_cleanup_failed",
				logging.Path(dirPath),
				logging.Error(err),
				logging.Hint("check temp_dir permissions"),
				logging.Impact("disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed stale working folder",
				logging.Path(dirPath),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.Event("working_folder_cleanup"),
			)
		}
	}

	return result
}

// ListDirectories returns the working folders under root sorted by name.
func ListDirectories(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(root, entry.Name())
		size, files := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
			Files:   files,
			Locked:  Locked(root, entry.Name()),
		})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs, nil
}

// DirInfo contains metadata about a working folder.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
	Files   int
	Locked  bool
}

// dirSize totals regular file sizes below path, best effort.
func dirSize(path string) (int64, int) {
	var (
		size  int64
		files int
	)
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files
}
