package archiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"archconv/internal/logging"
	"archconv/internal/services"
)

func requireExists(component, operation, what, path string) (os.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrInvalidArgument, component, operation, what+" path is empty", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, component, operation, fmt.Sprintf("%s not found: %s", what, path), nil)
		}
		return nil, services.Wrap(services.ErrArchive, component, operation, "stat "+path, err)
	}
	return info, nil
}

func requireDir(component, operation, what, path string) error {
	info, err := requireExists(component, operation, what, path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrInvalidArgument, component, operation, fmt.Sprintf("%s is not a directory: %s", what, path), nil)
	}
	return nil
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	path = absClean(path)
	dir = absClean(dir)
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func absClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// checkUtility fails with ErrIllegalState when the tool binary cannot be
// resolved, so a missing install surfaces before any archive is touched.
func checkUtility(component, path string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrIllegalState, component, "init", "archive utility path is not configured", nil)
	}
	if _, err := exec.LookPath(path); err != nil {
		return services.Wrap(services.ErrIllegalState, component, "init", "archive utility not found: "+path, err)
	}
	return nil
}

func runFailure(component, operation, program string, err error) error {
	if errors.Is(err, services.ErrInterrupted) {
		return err
	}
	return services.Wrap(services.ErrArchive, component, operation, "run "+program, err)
}

func operationLogger(ctx context.Context, base *slog.Logger, op, archive string) *slog.Logger {
	logger := logging.WithContext(ctx, base).With(logging.String(logging.FieldOperation, op))
	if _, ok := services.ArchiveFromContext(ctx); !ok {
		logger = logger.With(logging.String(logging.FieldArchive, archive))
	}
	return logger
}

func logHint(path string) string {
	if path == "" {
		return ""
	}
	return "; see log file " + path
}
