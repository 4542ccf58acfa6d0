package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"archconv/internal/archive"
	"archconv/internal/archiver"
	"archconv/internal/process"
	"archconv/internal/services"
)

// listArchive is an in-process stand-in for an archive format: the archive
// file holds one entry name per line.
type listArchive struct {
	testErr  error
	dropLast bool
	// keepLog leaves an extraction transcript behind, as append mode does.
	keepLog bool
	calls   []string
}

func (l *listArchive) record(call string) {
	l.calls = append(l.calls, call)
}

func (l *listArchive) FileList(_ context.Context, path string, listeners process.Listeners) ([]string, error) {
	l.record("list")
	entries, err := readEntries(path)
	if err != nil {
		return nil, services.Wrap(services.ErrArchive, "fake", "list", path, err)
	}
	for _, e := range entries {
		if listeners.Message != nil {
			listeners.Message(e)
		}
	}
	return entries, nil
}

func (l *listArchive) ExtractTo(ctx context.Context, path, destination string, listeners process.Listeners) error {
	l.record("extract")
	entries, err := readEntries(path)
	if err != nil {
		return services.Wrap(services.ErrArchive, "fake", "extract", path, err)
	}
	if l.keepLog {
		logPath, ok := services.TranscriptPathFromContext(ctx)
		if !ok {
			logPath = filepath.Join(destination, filepath.Base(path)+".log")
		}
		if err := os.WriteFile(logPath, []byte(strings.Join(entries, "\n")), 0o644); err != nil {
			return err
		}
	}
	for i, e := range entries {
		if err := os.WriteFile(filepath.Join(destination, e), []byte(e), 0o644); err != nil {
			return err
		}
		if listeners.Progress != nil {
			listeners.Progress(int64(i + 1))
		}
		if listeners.Message != nil {
			listeners.Message("Extracting  " + e)
		}
	}
	return nil
}

func (l *listArchive) Test(context.Context, string, process.Listeners) error {
	l.record("test")
	return l.testErr
}

func (l *listArchive) PackFolder(_ context.Context, path, folder string, listeners process.Listeners) error {
	l.record("pack")
	if rel, err := filepath.Rel(folder, filepath.Dir(path)); err == nil && !strings.HasPrefix(rel, "..") {
		return services.Wrap(services.ErrInvalidArgument, "fake", "pack", "archive inside source folder", nil)
	}
	dirEntries, err := os.ReadDir(folder)
	if err != nil {
		return services.Wrap(services.ErrArchive, "fake", "pack", folder, err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if l.dropLast && len(names) > 0 {
		names = names[:len(names)-1]
	}
	for i, n := range names {
		if listeners.Progress != nil {
			listeners.Progress(int64(i + 1))
		}
		if listeners.Message != nil {
			listeners.Message("Compressing  " + n)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(names, "\n")), 0o644)
}

func readEntries(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}

func writeSource(t *testing.T, dir, name string, entries int) string {
	t.Helper()
	lines := make([]string, entries)
	for i := range lines {
		lines[i] = fmt.Sprintf("file%03d.txt", i)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

type fixture struct {
	dir      string
	dest     string
	temp     string
	rar      *listArchive
	zip      *listArchive
	provider *archiver.ToolProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:      dir,
		dest:     filepath.Join(dir, "out"),
		temp:     filepath.Join(dir, "tmp"),
		rar:      &listArchive{},
		zip:      &listArchive{},
		provider: archiver.NewProvider(),
	}
	f.provider.RegisterExtractor(archive.RAR, f.rar)
	f.provider.RegisterPacker(archive.RAR, f.rar)
	f.provider.RegisterExtractor(archive.ZIP, f.zip)
	f.provider.RegisterPacker(archive.ZIP, f.zip)
	return f
}

func (f *fixture) config(source string, options ...Step) Config {
	return Config{
		Source:            source,
		DestinationFolder: f.dest,
		TargetFormat:      archive.ZIP,
		TempRoot:          f.temp,
		Options:           options,
	}
}

func (f *fixture) converter(t *testing.T, cfg Config, opts ...Option) *Converter {
	t.Helper()
	c, err := New(cfg, f.provider, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

type events struct {
	mu       sync.Mutex
	progress []int64
	messages []string
	steps    []string
}

func (e *events) listeners() Listeners {
	return Listeners{
		Progress: func(n int64) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.progress = append(e.progress, n)
		},
		Message: func(line string) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.messages = append(e.messages, line)
		},
		Step: func(msg string) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.steps = append(e.steps, msg)
		},
	}
}

type memoryRecorder struct {
	runs []Run
	err  error
}

func (m *memoryRecorder) Record(_ context.Context, run Run) error {
	m.runs = append(m.runs, run)
	return m.err
}

func requireKind(t *testing.T, err, marker error) {
	t.Helper()
	if !errors.Is(err, marker) {
		t.Fatalf("expected %v, got %v", marker, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
