//go:build unix

package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"noticeboard/internal/board"
)

const lockPollInterval = 10 * time.Millisecond

// lockFile takes an exclusive flock(2) on path, polling until deadline.
func lockFile(path string, deadline time.Time) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	fd := int(f.Fd())

	for {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			return nil, fmt.Errorf("locking %s: %w", path, err)
		}
		if time.Now().After(deadline) {
			f.Close()
			return nil, fmt.Errorf("%w: %s is held by another process", board.ErrStoreBusy, path)
		}
		time.Sleep(lockPollInterval)
	}

	return func() {
		unix.Flock(fd, unix.LOCK_UN)
		f.Close()
	}, nil
}
