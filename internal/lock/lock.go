// Package lock serializes driverman runs that share a driver store.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// FileName is the lock file created inside the locked directory.
	FileName = ".driverman.lock"
	// StaleLockThreshold is the maximum age of a lock before it's considered
	// stale. The lock is not refreshed while held, so a run that keeps it
	// longer than this (a slow download with no HTTP timeout) can be taken
	// over by a second run. Callers holding the lock for long periods should
	// bound their work with a timeout below this threshold.
	StaleLockThreshold = 10 * time.Minute
)

// statLock is os.Stat; tests replace it.
var statLock = os.Stat

// ErrLockExists is returned when another run holds the lock.
var ErrLockExists = errors.New("store lock exists: another driverman run may be in progress")

// Lock is an exclusive lock on a directory.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock for dir, creating dir if needed. A lock older than
// StaleLockThreshold is taken over once.
func Acquire(ctx context.Context, dir string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, FileName)

	file, err := create(lockPath)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		stale, statErr := isStale(lockPath)
		switch {
		case errors.Is(statErr, os.ErrNotExist):
			// Released between create and stat.
		case statErr != nil:
			return nil, fmt.Errorf("check lock file: %w", statErr)
		case !stale:
			return nil, ErrLockExists
		default:
			_ = os.Remove(lockPath)
		}
		if file, err = create(lockPath); err != nil {
			return nil, ErrLockExists
		}
	}

	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	return &Lock{path: lockPath, file: file}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release releases the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		path := l.path
		l.path = ""
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
	}

	return nil
}

func create(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
}

// isStale checks if a lock file is older than the stale lock threshold.
func isStale(lockPath string) (bool, error) {
	info, err := statLock(lockPath)
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) > StaleLockThreshold, nil
}
