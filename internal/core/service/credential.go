package service

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// CredentialVerifier checks secrets against stored hashes. New hashes are
// always bcrypt; stored values equal to the plain secret are still accepted
// for records that predate hashing.
type CredentialVerifier struct {
	cost int
}

func NewCredentialVerifier(cost int) *CredentialVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialVerifier{cost: cost}
}

// Hash returns a salted bcrypt hash of secret.
func (v *CredentialVerifier) Hash(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password must not exceed 72 bytes", domain.ErrValidation)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether secret matches storedHash, either byte for byte
// (legacy records) or as a bcrypt hash. A malformed hash is a mismatch.
func (v *CredentialVerifier) Verify(secret, storedHash string) bool {
	if secret == "" || storedHash == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(storedHash)) == 1 {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}
