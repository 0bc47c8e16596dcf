// Package memory implements the file-persisted cache collaborators
// ("memory banks"): the NPC capability cache, the inter-map movement
// graph, the experience-rate table, and the per-map walk cache. All four
// are flat JSON or line-based files shared between client processes:
// writes go through a temp file plus atomic rename under a cross-process
// lock, and a bank reloads itself when the on-disk modification time
// advances past what this process last observed.
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// writeAtomic writes data to path via a temp file in the same directory
// followed by an atomic rename, under the bank's file lock.
func writeAtomic(path string, data []byte) error {
	lock := NewFileLock(path)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("bank dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".bank-*")
	if err != nil {
		return fmt.Errorf("bank temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("bank write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("bank close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("bank rename: %w", err)
	}
	return nil
}

// readLocked reads the whole file under the bank's lock. A missing file
// returns (nil, no error): a bank starts empty.
func readLocked(path string) ([]byte, time.Time, error) {
	lock := NewFileLock(path)
	if err := lock.Acquire(); err != nil {
		return nil, time.Time{}, err
	}
	defer lock.Release()

	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("bank stat: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("bank read: %w", err)
	}
	return data, fi.ModTime(), nil
}

// modTime returns the file's mtime, or zero when absent.
func modTime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}
