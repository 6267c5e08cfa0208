package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalServer = errors.New("internal server error")

	// Login failures. ErrInvalidCredentials deliberately covers both an
	// unknown username and a wrong password so callers cannot enumerate
	// accounts; ErrAccountNotFound and ErrCredentialFormat exist for
	// internal branching and logging only and must never reach a caller.
	ErrChallengeExpired   = errors.New("challenge code has expired")
	ErrChallengeMismatch  = errors.New("incorrect challenge code")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrCredentialFormat   = errors.New("malformed credential ciphertext")

	// Account state errors
	ErrAccountDisabled = errors.New("account is disabled")
	ErrAccountDeleted  = errors.New("account is deleted")
)

// AccountLockedError reports a lockout together with how long it still lasts.
// For a lockout created by the failing attempt itself Remaining is the full
// configured duration; for a pre-existing lockout it is the remaining TTL
// read from the store.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is locked, try again in %s", e.Remaining)
}

// IsAccountLocked reports whether err is an AccountLockedError and returns it.
func IsAccountLocked(err error) (*AccountLockedError, bool) {
	var locked *AccountLockedError
	if errors.As(err, &locked) {
		return locked, true
	}
	return nil, false
}
