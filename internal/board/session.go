package board

import "sync"

// SessionMarker is the session-layer capability the gate reads and writes:
// an authenticated flag plus the username. Storage and expiry belong to
// the presentation layer.
type SessionMarker interface {
	// Authenticated returns the username and true when the session is marked.
	Authenticated() (username string, ok bool)
	MarkAuthenticated(username string) error
	Clear() error
}

// MemorySession is a process-local SessionMarker, used by the CLI and tests.
type MemorySession struct {
	mu       sync.Mutex
	username string
	marked   bool
}

func NewMemorySession() *MemorySession { return &MemorySession{} }

func (s *MemorySession) Authenticated() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username, s.marked
}

func (s *MemorySession) MarkAuthenticated(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.marked = true
	return nil
}

func (s *MemorySession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	s.marked = false
	return nil
}

var _ SessionMarker = (*MemorySession)(nil)
