package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// HashComparator matches a plaintext password against a stored hash. The
// comparison must be constant time; plain byte equality on secrets is never
// acceptable here.
type HashComparator interface {
	Matches(password, hash string) bool
}

// BcryptComparator matches passwords against bcrypt hashes.
type BcryptComparator struct{}

func (BcryptComparator) Matches(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword produces a bcrypt hash for storage. Used by account seeding
// and tests; the login path only ever compares.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
