//go:build windows

package session

import (
	"fmt"
	"os"
)

// Windows has no syscall.Flock. The lock file is created but sessions in
// different processes are not kept apart.

// acquireLock opens the lock file without locking it.
func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return f, nil
}

// tryLock opens the lock file without locking it.
func tryLock(path string) (*os.File, error) {
	return acquireLock(path)
}

// releaseLock closes the lock file.
func releaseLock(f *os.File) {
	if f == nil {
		return
	}
	_ = f.Close()
}
