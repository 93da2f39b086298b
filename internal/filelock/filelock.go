// Package filelock provides file-based locking for concurrent access protection
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Lock is a file-based advisory lock. Independent catdog invocations use it
// to serialize rotation within one backup directory.
type Lock struct {
	path string
	file *os.File
}

// NewForDir creates a lock for operations on a directory.
// The lock file lives at dir/.lock.
func NewForDir(dir string) *Lock {
	return &Lock{path: filepath.Join(dir, ".lock")}
}

// Acquire takes the exclusive lock, blocking until it is available.
func (l *Lock) Acquire() error {
	f, err := l.open()
	if err != nil {
		return err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	l.file = f
	return nil
}

// TryAcquire attempts to take the exclusive lock without blocking.
// It reports whether the lock was acquired.
func (l *Lock) TryAcquire() (bool, error) {
	f, err := l.open()
	if err != nil {
		return false, err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
			return false, nil
		}
		return false, fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	l.file = f
	return true, nil
}

// Release drops the lock. Safe to call when the lock is not held.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return closeErr
}

func (l *Lock) open() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return f, nil
}
