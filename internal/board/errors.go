package board

import "errors"

// User-caused refusals. None of these perform a mutation.
var (
	// ErrValidation means a required field was missing or blank.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the referenced record id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername means an administrator with the same username exists.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrLastAdmin means the deletion would leave the board without administrators.
	ErrLastAdmin = errors.New("cannot delete the last administrator")
	// ErrAuthentication is the single, generic login failure.
	ErrAuthentication = errors.New("invalid credentials")
	// ErrAuthorization means the caller holds no valid authenticated session.
	ErrAuthorization = errors.New("not authorized")
)

// Infrastructure failures. These are logged for the operator and surfaced
// as generic failures.
var (
	// ErrCorruptStore means a backing file does not hold valid structured data.
	ErrCorruptStore = errors.New("record store is corrupt")
	// ErrStoreBusy means the collection lock could not be acquired in time.
	ErrStoreBusy = errors.New("record store is busy")
)

// IsUserError reports whether err is one of the recoverable, user-caused
// refusals rather than an infrastructure failure.
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrValidation,
		ErrNotFound,
		ErrDuplicateUsername,
		ErrLastAdmin,
		ErrAuthentication,
		ErrAuthorization,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
