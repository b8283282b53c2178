package service

import (
	"context"
	"errors"
	"testing"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	v, err := env.users.Create(ctx, env.admin, ports.CreateUserInput{
		Username: "  carol ",
		Password: "pw",
		Email:    "carol@example.com",
		Roles:    []string{" CLIENT ", "support", "client"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.Username != "carol" {
		t.Fatalf("username not trimmed: %q", v.Username)
	}
	if len(v.Roles) != 2 {
		t.Fatalf("expected two distinct roles, got %v", v.Roles)
	}

	stored, _ := env.store.Users().FindByID(ctx, v.ID)
	if stored.PasswordHash == "pw" || !env.creds.Verify("pw", stored.PasswordHash) {
		t.Fatalf("password not stored as a verifiable hash")
	}
}

func TestUserService_CreateConflictsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   ports.CreateUserInput
		want error
	}{
		{"duplicate username", ports.CreateUserInput{Username: "alice", Password: "pw"}, domain.ErrDuplicateUsername},
		{"duplicate email", ports.CreateUserInput{Username: "carol", Password: "pw", Email: "alice@example.com"}, domain.ErrDuplicateEmail},
		{"blank username", ports.CreateUserInput{Username: " ", Password: "pw"}, domain.ErrValidation},
		{"blank password", ports.CreateUserInput{Username: "carol", Password: "  "}, domain.ErrValidation},
		{"unknown role", ports.CreateUserInput{Username: "carol", Password: "pw", Roles: []string{"ghost"}}, domain.ErrRoleNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.users.Create(ctx, env.admin, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := env.store.Users().FindByUsername(ctx, "carol"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("failed create left a user behind: %v", err)
	}
}

func TestUserService_CreateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Create(context.Background(), env.support, createUserInput("carol"))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_UpdateRolesReplaces(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	v, err := env.users.Update(ctx, env.admin, env.alice.ID, ports.UpdateUserInput{Roles: []string{"support"}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(v.Roles) != 1 || v.Roles[0] != "support" {
		t.Fatalf("expected roles replaced by [support], got %v", v.Roles)
	}

	v, err = env.users.Update(ctx, env.admin, env.alice.ID, ports.UpdateUserInput{Email: strPtr("new@example.com")})
	if err != nil {
		t.Fatalf("Update email: %v", err)
	}
	if v.Email != "new@example.com" || len(v.Roles) != 1 {
		t.Fatalf("unexpected view after email update: %+v", v)
	}
}

func TestUserService_UpdateUnknownRoleKeepsMemberships(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Update(ctx, env.admin, env.alice.ID, ports.UpdateUserInput{Roles: []string{"support", "ghost", "phantom"}})
	var missing *domain.MissingRolesError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRolesError, got %v", err)
	}
	if len(missing.Names) != 2 {
		t.Fatalf("expected every missing name reported, got %v", missing.Names)
	}

	v, _ := env.users.Get(ctx, env.admin, env.alice.ID)
	if len(v.Roles) != 1 || v.Roles[0] != "client" {
		t.Fatalf("memberships changed after failed assignment: %v", v.Roles)
	}
}

func TestUserService_UpdateEmailAndPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Update(ctx, env.admin, env.alice.ID, ports.UpdateUserInput{Email: strPtr("bob@example.com")})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := env.users.Update(ctx, env.admin, env.alice.ID, ports.UpdateUserInput{Email: strPtr("alice@example.com")}); err != nil {
		t.Fatalf("keeping own email should succeed: %v", err)
	}

	if _, err := env.users.Update(ctx, env.admin, env.alice.ID, ports.UpdateUserInput{Password: strPtr("rotated")}); err != nil {
		t.Fatalf("Update password: %v", err)
	}
	if _, err := env.auth.Login(ctx, "alice", "rotated"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := env.auth.Login(ctx, "alice", "alice-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}

	if _, err := env.users.Update(ctx, env.admin, "missing", ports.UpdateUserInput{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.users.Delete(ctx, env.admin, env.bob.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ms, _ := env.store.Memberships().ListByUser(ctx, env.bob.ID); len(ms) != 0 {
		t.Fatalf("memberships survived: %+v", ms)
	}
	if err := env.users.Delete(ctx, env.admin, env.bob.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t)

	views, err := env.users.List(context.Background(), env.admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 4 {
		t.Fatalf("expected 4 users, got %d", len(views))
	}
	for _, v := range views {
		if len(v.Roles) != 1 {
			t.Fatalf("expected one role for %s, got %v", v.Username, v.Roles)
		}
	}
}
