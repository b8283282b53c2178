package ports

import (
	"context"
	"time"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// UserView is the externally visible shape of a user.
type UserView struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
	Roles     []string
}

type CreateUserInput struct {
	Username string
	Password string
	Email    string
	Roles    []string
}

// UpdateUserInput is partial. A nil Roles slice leaves memberships untouched;
// a non-nil one replaces them entirely.
type UpdateUserInput struct {
	Email    *string
	Password *string
	Roles    []string
}

type UserService interface {
	List(ctx context.Context, p domain.Principal) ([]UserView, error)
	Get(ctx context.Context, p domain.Principal, id string) (*UserView, error)
	Create(ctx context.Context, p domain.Principal, in CreateUserInput) (*UserView, error)
	Update(ctx context.Context, p domain.Principal, id string, in UpdateUserInput) (*UserView, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}

type RoleService interface {
	List(ctx context.Context, p domain.Principal) ([]*domain.Role, error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Role, error)
	Create(ctx context.Context, p domain.Principal, name string) (*domain.Role, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
