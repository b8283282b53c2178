package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

type RoleService struct {
	tx    ports.TxManager
	roles ports.RoleRepository
	log   zerolog.Logger
}

func NewRoleService(tx ports.TxManager, roles ports.RoleRepository, log zerolog.Logger) *RoleService {
	return &RoleService{tx: tx, roles: roles, log: log}
}

// List returns every role sorted by name.
func (s *RoleService) List(ctx context.Context, p domain.Principal) ([]*domain.Role, error) {
	if err := domain.Authorize(p, domain.OpManageRoles); err != nil {
		return nil, err
	}
	return s.roles.List(ctx)
}

func (s *RoleService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Role, error) {
	if err := domain.Authorize(p, domain.OpManageRoles); err != nil {
		return nil, err
	}
	return s.roles.FindByID(ctx, id)
}

// Create stores a new role. The name is trimmed and must not collide,
// case-insensitively, with an existing role.
func (s *RoleService) Create(ctx context.Context, p domain.Principal, name string) (*domain.Role, error) {
	if err := domain.Authorize(p, domain.OpManageRoles); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", domain.ErrValidation)
	}

	role := &domain.Role{ID: uuid.NewString(), Name: name}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return createRole(ctx, s.roles, role)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("role_id", role.ID).Str("role", role.Name).Msg("role created")
	return role, nil
}

// Delete removes the role together with every membership that references it.
func (s *RoleService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := domain.Authorize(p, domain.OpManageRoles); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		deleted, err := s.roles.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete role: %w", err)
		}
		if !deleted {
			return domain.ErrRoleNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("role_id", id).Msg("role deleted")
	return nil
}

func createRole(ctx context.Context, roles ports.RoleRepository, role *domain.Role) error {
	_, err := roles.FindByName(ctx, role.Name)
	switch {
	case err == nil:
		return domain.ErrDuplicateRoleName
	case !errors.Is(err, domain.ErrRoleNotFound):
		return fmt.Errorf("create role: %w", err)
	}
	if err := roles.Create(ctx, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}
