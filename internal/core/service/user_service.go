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

type UserService struct {
	tx          ports.TxManager
	users       ports.UserRepository
	memberships ports.MembershipRepository
	manager     *MembershipManager
	creds       ports.CredentialVerifier
	log         zerolog.Logger
	now         func() time.Time
}

func NewUserService(
	tx ports.TxManager,
	users ports.UserRepository,
	memberships ports.MembershipRepository,
	manager *MembershipManager,
	creds ports.CredentialVerifier,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		tx:          tx,
		users:       users,
		memberships: memberships,
		manager:     manager,
		creds:       creds,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) List(ctx context.Context, p domain.Principal) ([]ports.UserView, error) {
	if err := domain.Authorize(p, domain.OpManageUsers); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	views := make([]ports.UserView, 0, len(users))
	for _, u := range users {
		v, err := s.view(ctx, u)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *UserService) Get(ctx context.Context, p domain.Principal, id string) (*ports.UserView, error) {
	if err := domain.Authorize(p, domain.OpManageUsers); err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, u)
}

// Create registers a user. Username and email uniqueness are checked against
// current state inside the same unit of work as the insert.
func (s *UserService) Create(ctx context.Context, p domain.Principal, in ports.CreateUserInput) (*ports.UserView, error) {
	if err := domain.Authorize(p, domain.OpManageUsers); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ensureUsernameFree(ctx, user.Username); err != nil {
			return err
		}
		if err := s.ensureEmailFree(ctx, user.Email, ""); err != nil {
			return err
		}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if len(in.Roles) == 0 {
			return nil
		}
		ms, err := s.manager.AssignRoles(ctx, user.ID, in.Roles)
		if err != nil {
			return err
		}
		user.Memberships = ms
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return toUserView(user), nil
}

// Update applies a partial change. A non-nil Roles slice replaces every
// membership of the user.
func (s *UserService) Update(ctx context.Context, p domain.Principal, id string, in ports.UpdateUserInput) (*ports.UserView, error) {
	if err := domain.Authorize(p, domain.OpManageUsers); err != nil {
		return nil, err
	}

	var hash string
	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		h, err := s.creds.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Email != nil {
			email := strings.TrimSpace(*in.Email)
			if email != "" && email != u.Email {
				if err := s.ensureEmailFree(ctx, email, u.ID); err != nil {
					return err
				}
				u.Email = email
			}
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		if err := s.users.Update(ctx, u); err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		if in.Roles != nil {
			ms, err := s.manager.AssignRoles(ctx, u.ID, in.Roles)
			if err != nil {
				return err
			}
			u.Memberships = ms
		} else {
			ms, err := s.memberships.ListByUser(ctx, u.ID)
			if err != nil {
				return fmt.Errorf("update user: %w", err)
			}
			u.Memberships = ms
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user updated")
	return toUserView(user), nil
}

// Delete removes the user together with its memberships.
func (s *UserService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := domain.Authorize(p, domain.OpManageUsers); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		deleted, err := s.users.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if !deleted {
			return domain.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return domain.ErrDuplicateUsername
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("check username: %w", err)
	}
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, excludeID string) error {
	if email == "" {
		return nil
	}
	exists, err := s.users.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.ErrDuplicateEmail
	}
	return nil
}

func (s *UserService) view(ctx context.Context, u *domain.User) (*ports.UserView, error) {
	ms, err := s.memberships.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	u.Memberships = ms
	return toUserView(u), nil
}

func toUserView(u *domain.User) *ports.UserView {
	return &ports.UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		Roles:     u.RoleNames(),
	}
}
