package archiver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"archconv/internal/process"
	"archconv/internal/services"
	"archconv/internal/toolcmd"
)

func newTestExtractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	extractor, err := NewExtractor(toolcmd.NewSevenZip(installFakeTool(t)), opts...)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}
	return extractor
}

func TestNewExtractorRequiresUtility(t *testing.T) {
	_, err := NewExtractor(toolcmd.NewSevenZip(filepath.Join(t.TempDir(), "missing-7z")))
	if !errors.Is(err, services.ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState, got %v", err)
	}
	_, err = NewExtractor(toolcmd.NewUnrar(""))
	if !errors.Is(err, services.ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState for empty path, got %v", err)
	}
	if _, err := NewExtractor(nil); !errors.Is(err, services.ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState for nil builder, got %v", err)
	}
}

func TestExtractorDefaultTimeout(t *testing.T) {
	e := newTestExtractor(t)
	if e.Timeout() != DefaultExtractTimeout {
		t.Fatalf("timeout = %s, want %s", e.Timeout(), DefaultExtractTimeout)
	}
	if e := newTestExtractor(t, WithTimeout(0)); e.Timeout() != 0 {
		t.Fatalf("explicit zero timeout should be kept, got %s", e.Timeout())
	}
}

func TestExtractToPreconditions(t *testing.T) {
	e := newTestExtractor(t)
	dir := t.TempDir()
	archivePath := writeArchive(t, dir, "in.zip", "a.txt")
	file := writeArchive(t, dir, "plain.txt")

	tests := []struct {
		name        string
		archive     string
		destination string
		want        error
	}{
		{"missing archive", filepath.Join(dir, "missing.zip"), dir, services.ErrNotFound},
		{"missing destination", archivePath, filepath.Join(dir, "nope"), services.ErrNotFound},
		{"destination is a file", archivePath, file, services.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ExtractTo(context.Background(), tt.archive, tt.destination, process.Listeners{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestExtractToSuccessRemovesTranscript(t *testing.T) {
	e := newTestExtractor(t)
	src := t.TempDir()
	dest := t.TempDir()
	archivePath := writeArchive(t, src, "in.zip", "a.txt", "b.txt", "c.txt")

	var rec recorder
	if err := e.ExtractTo(context.Background(), archivePath, dest, rec.listeners()); err != nil {
		t.Fatalf("ExtractTo returned error: %v", err)
	}

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Fatalf("expected extracted %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "in.zip.log")); !os.IsNotExist(err) {
		t.Fatalf("expected transcript to be removed, stat err = %v", err)
	}
	// three entries plus the summary line
	if rec.last() != 4 {
		t.Fatalf("last progress = %d, want 4", rec.last())
	}
	if len(rec.messages) != 4 || rec.messages[3] != "Everything is Ok" {
		t.Fatalf("unexpected messages: %v", rec.messages)
	}
}

func TestExtractToProgressResetsPerCall(t *testing.T) {
	e := newTestExtractor(t)
	archivePath := writeArchive(t, t.TempDir(), "in.zip", "a.txt")

	for i := 0; i < 2; i++ {
		var rec recorder
		if err := e.ExtractTo(context.Background(), archivePath, t.TempDir(), rec.listeners()); err != nil {
			t.Fatalf("ExtractTo returned error: %v", err)
		}
		if len(rec.counts) == 0 || rec.counts[0] != 1 {
			t.Fatalf("call %d: progress should restart at 1, got %v", i, rec.counts)
		}
	}
}

func TestExtractToAppendModeAccumulates(t *testing.T) {
	e := newTestExtractor(t, WithAppendLog(true))
	dest := t.TempDir()
	archivePath := writeArchive(t, t.TempDir(), "in.zip", "a.txt", "b.txt")

	for i := 0; i < 2; i++ {
		if err := e.ExtractTo(context.Background(), archivePath, dest, process.Listeners{}); err != nil {
			t.Fatalf("ExtractTo #%d returned error: %v", i, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dest, "in.zip.log"))
	if err != nil {
		t.Fatalf("expected transcript to remain: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 6 {
		t.Fatalf("transcript has %d lines, want 6:\n%s", lines, data)
	}
}

func TestExtractToTranscriptPinnedOnContext(t *testing.T) {
	e := newTestExtractor(t, WithAppendLog(true))
	dest := t.TempDir()
	pinned := filepath.Join(t.TempDir(), "in.zip.log")
	archivePath := writeArchive(t, t.TempDir(), "in.zip", "a.txt")

	ctx := services.WithTranscriptPath(context.Background(), pinned)
	if err := e.ExtractTo(ctx, archivePath, dest, process.Listeners{}); err != nil {
		t.Fatalf("ExtractTo returned error: %v", err)
	}
	if _, err := os.Stat(pinned); err != nil {
		t.Fatalf("expected transcript at pinned path: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "in.zip.log")); !os.IsNotExist(err) {
		t.Fatalf("no transcript expected in destination, stat err = %v", err)
	}
}

func TestExtractToConfiguredLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "extract.log")
	e := newTestExtractor(t, WithLogFile(logFile), WithAppendLog(true))
	dest := t.TempDir()
	archivePath := writeArchive(t, t.TempDir(), "in.zip", "a.txt")

	if err := e.ExtractTo(context.Background(), archivePath, dest, process.Listeners{}); err != nil {
		t.Fatalf("ExtractTo returned error: %v", err)
	}
	if _, err := os.Stat(logFile); err != nil {
		t.Fatalf("expected configured transcript: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "in.zip.log")); !os.IsNotExist(err) {
		t.Fatalf("no transcript expected in destination, stat err = %v", err)
	}
}

func TestExtractToToolFailureKeepsTranscript(t *testing.T) {
	e := newTestExtractor(t)
	dest := t.TempDir()
	archivePath := writeArchive(t, t.TempDir(), "broken.zip", "FAIL")

	err := e.ExtractTo(context.Background(), archivePath, dest, process.Listeners{})
	if !errors.Is(err, services.ErrArchive) || errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected non-timeout ErrArchive, got %v", err)
	}
	logPath := filepath.Join(dest, "broken.zip.log")
	if !strings.Contains(err.Error(), "exit code 2") || !strings.Contains(err.Error(), logPath) {
		t.Fatalf("error should mention exit code and log path: %v", err)
	}
	data, readErr := os.ReadFile(logPath)
	if readErr != nil {
		t.Fatalf("transcript should survive failure: %v", readErr)
	}
	if !strings.Contains(string(data), "Data error") {
		t.Fatalf("transcript should capture stderr, got %q", data)
	}
}

func TestExtractToZeroTimeout(t *testing.T) {
	e := newTestExtractor(t, WithTimeout(0))
	dest := t.TempDir()
	archivePath := writeArchive(t, t.TempDir(), "slow.zip", "SLEEP")

	start := time.Now()
	err := e.ExtractTo(context.Background(), archivePath, dest, process.Listeners{})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !errors.Is(err, services.ErrArchive) {
		t.Fatalf("timeout must also match ErrArchive, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("timeout took %s", elapsed)
	}
	data, readErr := os.ReadFile(filepath.Join(dest, "slow.zip.log"))
	if readErr != nil {
		t.Fatalf("expected transcript with timeout notice: %v", readErr)
	}
	if !strings.Contains(string(data), "extract timeout") {
		t.Fatalf("timeout notice missing from transcript: %q", data)
	}
}

func TestExtractToContextCancel(t *testing.T) {
	e := newTestExtractor(t)
	archivePath := writeArchive(t, t.TempDir(), "slow.zip", "SLEEP")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := e.ExtractTo(ctx, archivePath, t.TempDir(), process.Listeners{})
	if !errors.Is(err, services.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if errors.Is(err, services.ErrTimeout) {
		t.Fatalf("cancellation must not look like a timeout: %v", err)
	}
}

func TestFileList(t *testing.T) {
	e := newTestExtractor(t)
	archivePath := writeArchive(t, t.TempDir(), "in.7z", "one.txt", "", "two.txt", "three.txt")

	var rec recorder
	entries, err := e.FileList(context.Background(), archivePath, rec.listeners())
	if err != nil {
		t.Fatalf("FileList returned error: %v", err)
	}
	if got := strings.Join(entries, ","); got != "one.txt,two.txt,three.txt" {
		t.Fatalf("entries = %q", got)
	}
	if rec.last() != 4 {
		t.Fatalf("every stdout line should drive progress, last = %d", rec.last())
	}
}

func TestFileListEmptyArchive(t *testing.T) {
	e := newTestExtractor(t)
	archivePath := writeArchive(t, t.TempDir(), "empty.zip")

	entries, err := e.FileList(context.Background(), archivePath, process.Listeners{})
	if err != nil {
		t.Fatalf("FileList returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %v", entries)
	}
}

func TestFileListFailureJoinsStderr(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "list.log")
	e := newTestExtractor(t, WithLogFile(logFile))
	archivePath := writeArchive(t, t.TempDir(), "bad.zip", "FAIL")

	_, err := e.FileList(context.Background(), archivePath, process.Listeners{})
	if !errors.Is(err, services.ErrArchive) {
		t.Fatalf("expected ErrArchive, got %v", err)
	}
	if !strings.Contains(err.Error(), "ERROR: "+archivePath+"\nCan not open the file as archive") {
		t.Fatalf("stderr lines should be joined into the error: %v", err)
	}
	if data, _ := os.ReadFile(logFile); !strings.Contains(string(data), "Can not open") {
		t.Fatalf("configured log file should receive the errors, got %q", data)
	}
}

func TestFileListMissingArchive(t *testing.T) {
	e := newTestExtractor(t)
	_, err := e.FileList(context.Background(), filepath.Join(t.TempDir(), "none.zip"), process.Listeners{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTestUnsupportedForBundledTools(t *testing.T) {
	e := newTestExtractor(t)
	archivePath := writeArchive(t, t.TempDir(), "in.zip", "a.txt")

	if err := e.Test(context.Background(), archivePath, process.Listeners{}); !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

// testingBuilder adds an integrity test command to the 7z builder.
type testingBuilder struct {
	*toolcmd.SevenZip
	script string
}

func (b testingBuilder) TestCommand(string) (process.Command, error) {
	return process.Command{"/bin/sh", "-c", b.script}, nil
}

func TestTestRunsToolCommand(t *testing.T) {
	archivePath := writeArchive(t, t.TempDir(), "in.zip", "a.txt")
	base := toolcmd.NewSevenZip(installFakeTool(t))

	ok, err := NewExtractor(testingBuilder{SevenZip: base, script: "echo Testing; echo Everything is Ok"})
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}
	var rec recorder
	if err := ok.Test(context.Background(), archivePath, rec.listeners()); err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	if rec.last() != 2 {
		t.Fatalf("last progress = %d, want 2", rec.last())
	}

	bad, err := NewExtractor(testingBuilder{SevenZip: base, script: "echo CRC Failed >&2; exit 2"})
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}
	err = bad.Test(context.Background(), archivePath, process.Listeners{})
	if !errors.Is(err, services.ErrArchive) || !strings.Contains(err.Error(), "CRC Failed") {
		t.Fatalf("expected ErrArchive with stderr, got %v", err)
	}
}
