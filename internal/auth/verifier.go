package auth

import (
	"fmt"

	"github.com/zhaoeryu/eu-authd/internal/models"
)

// CredentialVerifier decrypts a submitted password and matches it against a
// stored hash. Decryptor and HashComparator are separate capabilities so
// either algorithm can be swapped without touching the login flow.
type CredentialVerifier struct {
	decryptor  Decryptor
	comparator HashComparator
}

func NewCredentialVerifier(decryptor Decryptor, comparator HashComparator) *CredentialVerifier {
	return &CredentialVerifier{
		decryptor:  decryptor,
		comparator: comparator,
	}
}

// Verify reports whether the encrypted submitted password matches storedHash.
// A decryption failure is not a mismatch: it returns models.ErrCredentialFormat
// so the caller can log it distinctly, and must not feed the failure counter.
func (v *CredentialVerifier) Verify(encryptedPassword, storedHash string) (bool, error) {
	plain, err := v.decryptor.Decrypt(encryptedPassword)
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrCredentialFormat, err)
	}
	return v.comparator.Matches(plain, storedHash), nil
}
