package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Transcript is an append-only log of one tool invocation's output. The file
// is opened lazily on the first write with create-if-absent semantics, so a
// quiet invocation leaves nothing on disk. A nil *Transcript discards writes.
type Transcript struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// NewTranscript returns a transcript bound to path without touching disk.
func NewTranscript(path string) *Transcript {
	return &Transcript{path: strings.TrimSpace(path)}
}

// Path returns the transcript location.
func (t *Transcript) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Append writes line plus a newline.
func (t *Transcript) Append(line string) error {
	if t == nil || t.path == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		if dir := filepath.Dir(t.path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create transcript dir: %w", err)
			}
		}
		file, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open transcript %s: %w", t.path, err)
		}
		t.file = file
	}
	if _, err := t.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write transcript %s: %w", t.path, err)
	}
	return nil
}

// Close releases the file handle; later appends reopen it.
func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// Remove closes and deletes the transcript. A transcript that was never
// written is not an error.
func (t *Transcript) Remove() error {
	if t == nil || t.path == "" {
		return nil
	}
	if err := t.Close(); err != nil {
		return err
	}
	if err := os.Remove(t.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
