package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another process holds the run lock.
var ErrLocked = errors.New("run lock held by another process")

// Lock is an exclusive advisory lock guarding one working folder.
type Lock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file for the working folder name under root.
func LockPath(root, name string) string {
	return filepath.Join(root, name+".lock")
}

// AcquireLock takes the run lock for name without blocking. It returns
// ErrLocked when the lock is held elsewhere.
func AcquireLock(root, name string) (*Lock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create temp root: %w", err)
	}
	path := LockPath(root, name)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks the run lock. The lock file stays in place: another process
// may already have it open and be waiting to lock it, and unlinking it would
// let a third process lock a fresh file at the same path.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}

// Locked reports whether the run lock for name is currently held.
func Locked(root, name string) bool {
	path := LockPath(root, name)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return false
	}
	if !ok {
		return true
	}
	_ = fl.Unlock()
	return false
}
