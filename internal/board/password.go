package board

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// PasswordHasher produces and checks salted, slow password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare reports whether password matches hash, in constant time.
	Compare(hash, password string) bool
}

// BcryptHasher hashes with bcrypt. A zero Cost means bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ConfirmPassword checks the repeated password field submitted alongside a
// new administrator.
func ConfirmPassword(password, confirm string) error {
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	return nil
}
