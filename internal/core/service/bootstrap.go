package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

// DefaultRoles are created on startup when missing.
var DefaultRoles = []string{domain.RoleAdmin, domain.RoleSupport, domain.RoleClient}

// Bootstrapper seeds the roles the access policy refers to and, optionally,
// a first administrator so the user-management endpoints are reachable.
type Bootstrapper struct {
	tx      ports.TxManager
	users   ports.UserRepository
	roles   ports.RoleRepository
	manager *MembershipManager
	creds   ports.CredentialVerifier
	log     zerolog.Logger
}

func NewBootstrapper(
	tx ports.TxManager,
	users ports.UserRepository,
	roles ports.RoleRepository,
	manager *MembershipManager,
	creds ports.CredentialVerifier,
	log zerolog.Logger,
) *Bootstrapper {
	return &Bootstrapper{tx: tx, users: users, roles: roles, manager: manager, creds: creds, log: log}
}

// EnsureRoles creates every default role that does not exist yet.
func (b *Bootstrapper) EnsureRoles(ctx context.Context) error {
	return b.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, name := range DefaultRoles {
			_, err := b.roles.FindByName(ctx, name)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrRoleNotFound) {
				return fmt.Errorf("ensure role %s: %w", name, err)
			}
			if err := b.roles.Create(ctx, &domain.Role{ID: uuid.NewString(), Name: name}); err != nil {
				return fmt.Errorf("ensure role %s: %w", name, err)
			}
			b.log.Info().Str("role", name).Msg("role seeded")
		}
		return nil
	})
}

// EnsureAdmin creates username with the admin role unless a user with that
// name already exists. Blank credentials skip seeding.
func (b *Bootstrapper) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	hash, err := b.creds.Hash(password)
	if err != nil {
		return err
	}

	return b.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := b.users.FindByUsername(ctx, username)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("ensure admin: %w", err)
		}

		u := &domain.User{
			ID:           uuid.NewString(),
			Username:     username,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := b.users.Create(ctx, u); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		if _, err := b.manager.AssignRoles(ctx, u.ID, []string{domain.RoleAdmin}); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		b.log.Info().Str("username", username).Msg("admin user seeded")
		return nil
	})
}
