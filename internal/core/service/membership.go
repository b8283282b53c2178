package service

import (
	"context"
	"fmt"
	"time"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

// MembershipManager reconciles a user's roles with a requested set of names.
type MembershipManager struct {
	roles       ports.RoleRepository
	memberships ports.MembershipRepository
	now         func() time.Time
}

func NewMembershipManager(roles ports.RoleRepository, memberships ports.MembershipRepository) *MembershipManager {
	return &MembershipManager{
		roles:       roles,
		memberships: memberships,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AssignRoles replaces every membership of userID with the roles named in
// names. Names are trimmed, case-folded and deduplicated first; if any name
// has no role nothing is written and a *domain.MissingRolesError lists them.
func (m *MembershipManager) AssignRoles(ctx context.Context, userID string, names []string) ([]domain.Membership, error) {
	normalized := domain.NormalizeRoleNames(names)

	available, err := m.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("assign roles: %w", err)
	}
	roles := make([]domain.Role, 0, len(available))
	for _, r := range available {
		roles = append(roles, *r)
	}

	resolved, err := domain.ResolveRoles(normalized, roles)
	if err != nil {
		return nil, err
	}

	now := m.now()
	ms := make([]domain.Membership, 0, len(resolved))
	for _, r := range resolved {
		ms = append(ms, domain.Membership{
			UserID:     userID,
			RoleID:     r.ID,
			RoleName:   r.Name,
			AssignedAt: now,
		})
	}

	if err := m.memberships.ReplaceForUser(ctx, userID, ms); err != nil {
		return nil, fmt.Errorf("assign roles: %w", err)
	}
	return ms, nil
}
