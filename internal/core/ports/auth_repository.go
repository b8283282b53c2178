package ports

import (
	"context"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// TxManager runs fn as a single unit of work. Every write performed with the
// ctx handed to fn commits together or not at all.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository persists principals. Returned users carry no memberships;
// load them through MembershipRepository.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// ExistsByEmail ignores the user with excludeID, if any.
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user and every membership referencing it. It
	// reports false when no such user exists.
	Delete(ctx context.Context, id string) (bool, error)
}

// RoleRepository persists roles.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	// FindByName matches case-insensitively after trimming.
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// List returns every role sorted by name.
	List(ctx context.Context) ([]*domain.Role, error)
	Create(ctx context.Context, role *domain.Role) error
	// Delete removes the role and every membership referencing it. It
	// reports false when no such role exists.
	Delete(ctx context.Context, id string) (bool, error)
}

// MembershipRepository persists user-role links.
type MembershipRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Membership, error)
	// ReplaceForUser drops every existing membership of userID and stores ms.
	ReplaceForUser(ctx context.Context, userID string, ms []domain.Membership) error
}
