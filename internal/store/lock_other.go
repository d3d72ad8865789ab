//go:build !unix

package store

import "time"

// lockFile is a no-op where flock(2) is unavailable; only the in-process
// lock applies, so a data directory must not be shared between processes.
func lockFile(string, time.Time) (func(), error) {
	return func() {}, nil
}
