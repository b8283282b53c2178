package ports

import (
	"context"
	"time"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
	Username  string
	Roles     []string
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// TokenService issues and validates signed identity assertions.
type TokenService interface {
	Issue(userID, username, email string, roles []string) (token string, expiresAt time.Time, err error)
	Validate(token string) (domain.Principal, error)
}

// CredentialVerifier hashes new secrets and checks presented ones.
type CredentialVerifier interface {
	Hash(secret string) (string, error)
	Verify(secret, storedHash string) bool
}
