package memory

import (
	"context"
	"sort"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// RoleRepository implements ports.RoleRepository.
type RoleRepository struct {
	s *Store
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := domain.NormalizeRoleName(name)
	for _, role := range r.s.roles {
		if domain.NormalizeRoleName(role.Name) == want {
			role := role
			return &role, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		role := role
		out = append(out, &role)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := domain.NormalizeRoleName(out[i].Name), domain.NormalizeRoleName(out[j].Name)
		if ki != kj {
			return ki < kj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	want := domain.NormalizeRoleName(role.Name)
	for _, existing := range r.s.roles {
		if domain.NormalizeRoleName(existing.Name) == want {
			return domain.ErrDuplicateRoleName
		}
	}
	r.s.roles[role.ID] = *role
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[id]; !ok {
		return false, nil
	}
	delete(r.s.roles, id)
	for userID, ms := range r.s.memberships {
		kept := ms[:0]
		for _, m := range ms {
			if m.RoleID != id {
				kept = append(kept, m)
			}
		}
		r.s.memberships[userID] = kept
	}
	return true, nil
}

// MembershipRepository implements ports.MembershipRepository. Role names are
// resolved from the role table on read so renamed roles stay consistent.
type MembershipRepository struct {
	s *Store
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ms := r.s.memberships[userID]
	out := make([]domain.Membership, 0, len(ms))
	for _, m := range ms {
		role, ok := r.s.roles[m.RoleID]
		if !ok {
			continue
		}
		m.RoleName = role.Name
		out = append(out, m)
	}
	return out, nil
}

func (r *MembershipRepository) ReplaceForUser(ctx context.Context, userID string, ms []domain.Membership) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, m := range ms {
		if _, ok := r.s.roles[m.RoleID]; !ok {
			return domain.ErrRoleNotFound
		}
	}
	r.s.memberships[userID] = append([]domain.Membership(nil), ms...)
	return nil
}
