package store

import (
	"fmt"
	"time"

	"noticeboard/internal/board"
)

// collectionLock serializes read-modify-write cycles on one collection.
// Goroutines in this process queue on sem; other processes are excluded by
// an advisory lock on filePath when one is set.
type collectionLock struct {
	sem      chan struct{}
	filePath string
	timeout  time.Duration
}

func newCollectionLock(filePath string, timeout time.Duration) *collectionLock {
	return &collectionLock{
		sem:      make(chan struct{}, 1),
		filePath: filePath,
		timeout:  timeout,
	}
}

// acquire waits at most l.timeout for exclusive access. The returned
// release func must be called exactly once.
func (l *collectionLock) acquire() (release func(), err error) {
	deadline := time.Now().Add(l.timeout)
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
	case <-timer.C:
		return nil, fmt.Errorf("%w: lock not acquired within %s", board.ErrStoreBusy, l.timeout)
	}

	if l.filePath == "" {
		return func() { <-l.sem }, nil
	}

	unlock, err := lockFile(l.filePath, deadline)
	if err != nil {
		<-l.sem
		return nil, err
	}
	return func() {
		unlock()
		<-l.sem
	}, nil
}
