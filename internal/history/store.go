package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"archconv/internal/pipeline"
	"archconv/internal/services"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one journaled run.
type Entry struct {
	ID            string
	Source        string
	Destination   string
	TargetFormat  string
	Step          string
	ErrorKind     string
	ErrorMessage  string
	SourceEntries int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Success reports whether the run completed every step.
func (e Entry) Success() bool {
	return e.Step == pipeline.StepAll.String() && e.ErrorKind == ""
}

// Duration returns the wall-clock time the run took.
func (e Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Store persists runs in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run. Recording the same run ID twice replaces the row.
func (s *Store) Record(ctx context.Context, run pipeline.Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	var errMessage string
	if run.State.Err != nil {
		errMessage = run.State.Err.Error()
	}
	return s.execWithRetry(ctx,
		`INSERT OR REPLACE INTO runs (
            id, source_path, destination_path, target_format, step,
            error_kind, error_message, source_entries, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		run.Destination,
		strings.TrimPrefix(run.TargetFormat.Ext(), "."),
		run.State.Step.String(),
		nullableString(services.Kind(run.State.Err)),
		nullableString(errMessage),
		run.SourceEntries,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
}

// List returns up to limit runs, newest first. A non-positive limit returns
// every run. failedOnly restricts the result to unsuccessful runs.
func (s *Store) List(ctx context.Context, limit int, failedOnly bool) ([]Entry, error) {
	query := `SELECT id, source_path, destination_path, target_format, step,
        error_kind, error_message, source_entries, started_at, finished_at FROM runs`
	if failedOnly {
		query += ` WHERE error_kind IS NOT NULL`
	}
	query += ` ORDER BY finished_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get returns the run with id. found is false when no such run exists.
func (s *Store) Get(ctx context.Context, id string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, source_path, destination_path, target_format, step,
        error_kind, error_message, source_entries, started_at, finished_at FROM runs WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get run: %w", err)
	}
	return entry, true, nil
}

// Prune deletes runs that finished before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, `DELETE FROM runs WHERE finished_at < ?`, formatTime(cutoff))
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry        Entry
		errorKind    sql.NullString
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Source,
		&entry.Destination,
		&entry.TargetFormat,
		&entry.Step,
		&errorKind,
		&errorMessage,
		&entry.SourceEntries,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Entry{}, err
	}
	entry.ErrorKind = errorKind.String
	entry.ErrorMessage = errorMessage.String
	entry.StartedAt = parseTime(startedRaw)
	entry.FinishedAt = parseTime(finishedRaw)
	return entry, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
