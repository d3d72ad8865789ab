package board

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Bootstrap credentials written on first initialization. Operators are
// expected to add their own administrator and delete this one.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// CredentialRepository owns the administrator roster on top of a private
// RecordStore. It keeps the roster non-empty and usernames unique.
type CredentialRepository struct {
	store  RecordStore[Administrator]
	hasher PasswordHasher
	clock  Clock

	decoyOnce sync.Once
	decoy     string
}

// NewCredentialRepository creates a repository backed by store.
func NewCredentialRepository(store RecordStore[Administrator], hasher PasswordHasher, clock Clock) *CredentialRepository {
	return &CredentialRepository{store: store, hasher: hasher, clock: clock}
}

// Initialize seeds the roster with the bootstrap administrator if no
// roster exists yet. It reports whether the seed was written.
func (r *CredentialRepository) Initialize() (bool, error) {
	seeded := false
	err := r.store.Initialize(func() ([]Administrator, error) {
		hash, err := r.hasher.Hash(DefaultAdminPassword)
		if err != nil {
			return nil, err
		}
		seeded = true
		return []Administrator{{
			ID:           1,
			Username:     DefaultAdminUsername,
			PasswordHash: hash,
			CreatedAt:    NewTimestamp(r.clock.Now()),
		}}, nil
	})
	if err != nil {
		return false, fmt.Errorf("initializing administrators: %w", err)
	}
	return seeded, nil
}

// ListAll returns the roster in stored order, without password hashes.
func (r *CredentialRepository) ListAll() ([]AdminView, error) {
	admins, err := r.records()
	if err != nil {
		return nil, err
	}
	views := make([]AdminView, len(admins))
	for i, a := range admins {
		views[i] = a.View()
	}
	return views, nil
}

func (r *CredentialRepository) records() ([]Administrator, error) {
	admins, err := r.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading administrators: %w", err)
	}
	return admins, nil
}

// Create adds an administrator. Usernames are compared case-sensitively.
func (r *CredentialRepository) Create(username, password string) (*AdminView, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxPasswordBytes)
	}

	// Hash before taking the collection lock.
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	var created Administrator
	err = r.store.Update(func(admins []Administrator) ([]Administrator, error) {
		for _, a := range admins {
			if a.Username == username {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
			}
		}
		created = Administrator{
			ID:           nextAdminID(admins),
			Username:     username,
			PasswordHash: hash,
			CreatedAt:    NewTimestamp(r.clock.Now()),
		}
		return append(admins, created), nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating administrator: %w", err)
	}
	view := created.View()
	return &view, nil
}

// Delete removes an administrator. It refuses whenever only one
// administrator remains, whichever id is given.
func (r *CredentialRepository) Delete(id int64) error {
	err := r.store.Update(func(admins []Administrator) ([]Administrator, error) {
		if len(admins) <= 1 {
			return nil, ErrLastAdmin
		}
		idx := slices.IndexFunc(admins, func(a Administrator) bool { return a.ID == id })
		if idx < 0 {
			return nil, fmt.Errorf("administrator %d: %w", id, ErrNotFound)
		}
		return slices.Delete(admins, idx, idx+1), nil
	})
	if err != nil {
		return fmt.Errorf("deleting administrator: %w", err)
	}
	return nil
}

// Verify reports whether password matches the hash stored for username.
// Unknown usernames still pay for one hash comparison so the two failure
// cases are indistinguishable by timing. Verify never mutates the roster.
func (r *CredentialRepository) Verify(username, password string) (bool, error) {
	admins, err := r.records()
	if err != nil {
		return false, err
	}
	for _, a := range admins {
		if a.Username == username {
			return r.hasher.Compare(a.PasswordHash, password), nil
		}
	}
	r.hasher.Compare(r.decoyHash(), password)
	return false, nil
}

// Exists reports whether an administrator named username is on the roster.
func (r *CredentialRepository) Exists(username string) (bool, error) {
	admins, err := r.records()
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(admins, func(a Administrator) bool { return a.Username == username }), nil
}

func (r *CredentialRepository) decoyHash() string {
	r.decoyOnce.Do(func() {
		// A failed hash leaves decoy empty; Compare then fails fast.
		r.decoy, _ = r.hasher.Hash("decoy-password")
	})
	return r.decoy
}

// nextAdminID returns one past the highest id on the roster.
func nextAdminID(admins []Administrator) int64 {
	var id int64
	for _, a := range admins {
		id = max(id, a.ID)
	}
	return id + 1
}
