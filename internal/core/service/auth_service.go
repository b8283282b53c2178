package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

// AuthService implements login.
type AuthService struct {
	users       ports.UserRepository
	memberships ports.MembershipRepository
	creds       ports.CredentialVerifier
	tokens      ports.TokenService
	log         zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	memberships ports.MembershipRepository,
	creds ports.CredentialVerifier,
	tokens ports.TokenService,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		memberships: memberships,
		creds:       creds,
		tokens:      tokens,
		log:         log,
	}
}

// Login verifies the credentials and issues a token carrying the user's
// current roles. Unknown users and wrong passwords both yield
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Msg("login rejected")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.creds.Verify(password, user.PasswordHash) {
		s.log.Warn().Str("user_id", user.ID).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	ms, err := s.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: load roles: %w", err)
	}
	user.Memberships = ms
	roles := user.RoleNames()

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username, user.Email, roles)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Strs("roles", roles).Msg("login succeeded")

	return &ports.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
		Roles:     roles,
	}, nil
}
