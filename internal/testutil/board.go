package testutil

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"noticeboard/internal/board"
	"noticeboard/internal/store"
)

// FastHasher is bcrypt at its minimum cost, so tests do not pay for
// production-strength hashing.
var FastHasher = board.BcryptHasher{Cost: bcrypt.MinCost}

// NewTestNoticeRepository creates an initialized notice repository over an
// in-memory store.
func NewTestNoticeRepository(t *testing.T, clock board.Clock) *board.NoticeRepository {
	t.Helper()
	repo := board.NewNoticeRepository(store.NewMemoryStore[board.Notice](store.Options{LockTimeout: 5 * time.Second}), clock)
	if err := repo.Initialize(); err != nil {
		t.Fatalf("failed to initialize notices: %v", err)
	}
	return repo
}

// NewTestCredentialRepository creates a credential repository over an
// in-memory store, seeded with the bootstrap administrator.
func NewTestCredentialRepository(t *testing.T, clock board.Clock) *board.CredentialRepository {
	t.Helper()
	repo := board.NewCredentialRepository(store.NewMemoryStore[board.Administrator](store.Options{LockTimeout: 5 * time.Second}), FastHasher, clock)
	if _, err := repo.Initialize(); err != nil {
		t.Fatalf("failed to initialize administrators: %v", err)
	}
	return repo
}

// NewTestService wires an initialized Service over in-memory stores.
func NewTestService(t *testing.T, clock board.Clock) *board.Service {
	t.Helper()
	notices := NewTestNoticeRepository(t, clock)
	admins := NewTestCredentialRepository(t, clock)
	gate := board.NewGate(admins, board.NewNopLogger())
	return board.NewService(notices, admins, gate, board.NewNopLogger())
}

// Login authenticates a fresh session as the bootstrap administrator and
// returns the session with its capability.
func Login(t *testing.T, svc *board.Service) (*board.MemorySession, *board.Capability) {
	t.Helper()
	sess := board.NewMemorySession()
	capability, err := svc.Login(sess, board.DefaultAdminUsername, board.DefaultAdminPassword)
	if err != nil {
		t.Fatalf("failed to log in as bootstrap administrator: %v", err)
	}
	return sess, capability
}
