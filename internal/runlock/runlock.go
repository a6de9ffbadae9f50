package runlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/tzpack/internal/logger"
)

const (
	// MarkerFilename is the lock marker created inside the work directory.
	MarkerFilename = "tzpack.lock"

	// unreadableGrace is how long a marker without a readable PID is assumed to be
	// in the middle of being written by its owner.
	unreadableGrace = 5 * time.Second

	// acquireAttempts bounds takeovers of stale markers.
	acquireAttempts = 2
)

// ErrAlreadyRunning indicates that another run holds the lock.
var ErrAlreadyRunning = errors.New("another tzpack run is in progress")

// Lock is a held run lock.
type Lock struct {
	// path is the marker file location.
	path string
}

// Acquire creates the marker in dir, taking over stale markers.
func Acquire(ctx context.Context, dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(dir, MarkerFilename)

	for range acquireAttempts {
		marker, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, writeErr := marker.WriteString(strconv.Itoa(os.Getpid()))
			closeErr := marker.Close()

			if err = errors.Join(writeErr, closeErr); err != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write lock marker: %w", err)
			}

			logger.DebugKV(ctx, "Acquired run lock", "path", path)

			return &Lock{path: path}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock marker: %w", err)
		}

		if held, pid := isHeld(path); held {
			return nil, fmt.Errorf("%w: pid %d holds %s", ErrAlreadyRunning, pid, path)
		}

		logger.InfoKV(ctx, "The lock marker is stale, attempting cleanup", "path", path)

		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock marker: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: lock marker %s keeps reappearing", ErrAlreadyRunning, path)
}

// Release removes the marker.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock marker: %w", err)
	}

	return nil
}

// isHeld reports whether the marker at path belongs to a live process.
// It errs on the side of "held" when the process table cannot be read.
func isHeld(path string) (bool, int) {
	info, err := os.Stat(path)
	if err != nil {
		// Gone already: the next create attempt decides.
		return false, 0
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return true, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return time.Since(info.ModTime()) <= unreadableGrace, 0
	}

	if pid == os.Getpid() {
		return true, pid
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return true, pid
	}

	return process != nil, pid
}
