package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileLock is a named cross-process advisory lock guarding a shared cache
// file. Multiple client processes may share the same on-disk cache; the
// lock's sole purpose is mutual exclusion on the file, not transactional
// integrity. flock(2) is released by the kernel when a holder dies, so an
// abandoned lock from a crashed process is acquired like any other — that
// is the contract, not an error.
type FileLock struct {
	path string
	f    *os.File
}

// NewFileLock derives the lock path for a guarded file.
func NewFileLock(guarded string) *FileLock {
	return &FileLock{path: guarded + ".lock"}
}

// Acquire blocks until the lock is held.
func (l *FileLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("lock dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock %s: %w", l.path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return fmt.Errorf("flock %s: %w", l.path, err)
	}
	l.f = f
	return nil
}

// Release drops the lock. Safe to call when not held.
func (l *FileLock) Release() {
	if l.f == nil {
		return
	}
	syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	l.f.Close()
	l.f = nil
}
