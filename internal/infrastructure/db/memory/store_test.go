package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	for _, u := range []*domain.User{
		{ID: "u1", Username: "alice", Email: "alice@example.com", CreatedAt: base},
		{ID: "u2", Username: "bob", CreatedAt: base.Add(time.Minute)},
	} {
		if err := s.Users().Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	for _, r := range []*domain.Role{{ID: "r1", Name: "client"}, {ID: "r2", Name: "support"}} {
		if err := s.Roles().Create(ctx, r); err != nil {
			t.Fatalf("create role: %v", err)
		}
	}
	return s
}

func TestUserRepository_Uniqueness(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	err := s.Users().Create(ctx, &domain.User{ID: "u3", Username: "alice"})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	err = s.Users().Create(ctx, &domain.User{ID: "u3", Username: "carol", Email: "alice@example.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	exists, err := s.Users().ExistsByEmail(ctx, "alice@example.com", "u1")
	if err != nil || exists {
		t.Fatalf("own email should not count: exists=%v err=%v", exists, err)
	}
	exists, _ = s.Users().ExistsByEmail(ctx, "alice@example.com", "u2")
	if !exists {
		t.Fatalf("expected email to be taken")
	}
}

func TestRoleRepository_FindByNameCaseInsensitive(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	r, err := s.Roles().FindByName(ctx, "  SUPPORT ")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if r.ID != "r2" {
		t.Fatalf("unexpected role: %+v", r)
	}

	if err := s.Roles().Create(ctx, &domain.Role{ID: "r9", Name: "Client"}); !errors.Is(err, domain.ErrDuplicateRoleName) {
		t.Fatalf("expected ErrDuplicateRoleName, got %v", err)
	}

	roles, _ := s.Roles().List(ctx)
	if len(roles) != 2 || roles[0].Name != "client" || roles[1].Name != "support" {
		t.Fatalf("roles not sorted by name: %+v", roles)
	}
}

func TestRoleRepository_ListIgnoresCase(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	for _, r := range []*domain.Role{{ID: "r3", Name: "Zeta"}, {ID: "r4", Name: "Auditor"}} {
		if err := s.Roles().Create(ctx, r); err != nil {
			t.Fatalf("create role: %v", err)
		}
	}

	roles, err := s.Roles().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"Auditor", "client", "support", "Zeta"}
	if len(roles) != len(want) {
		t.Fatalf("expected %d roles, got %d", len(want), len(roles))
	}
	for i, r := range roles {
		if r.Name != want[i] {
			t.Fatalf("got %s at %d, want %s", r.Name, i, want[i])
		}
	}
}

func TestRoleRepository_DeleteCascadesMemberships(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	ms := []domain.Membership{{UserID: "u1", RoleID: "r1"}, {UserID: "u1", RoleID: "r2"}}
	if err := s.Memberships().ReplaceForUser(ctx, "u1", ms); err != nil {
		t.Fatalf("ReplaceForUser: %v", err)
	}

	deleted, err := s.Roles().Delete(ctx, "r1")
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}

	got, _ := s.Memberships().ListByUser(ctx, "u1")
	if len(got) != 1 || got[0].RoleName != "support" {
		t.Fatalf("unexpected memberships after cascade: %+v", got)
	}

	deleted, _ = s.Roles().Delete(ctx, "r1")
	if deleted {
		t.Fatalf("second delete should report false")
	}
}

func TestUserRepository_DeleteCascadesMemberships(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	_ = s.Memberships().ReplaceForUser(ctx, "u2", []domain.Membership{{UserID: "u2", RoleID: "r2"}})
	if deleted, _ := s.Users().Delete(ctx, "u2"); !deleted {
		t.Fatalf("expected delete")
	}
	got, _ := s.Memberships().ListByUser(ctx, "u2")
	if len(got) != 0 {
		t.Fatalf("memberships survived user delete: %+v", got)
	}
}

func TestTicketRepository_OrderingAndCascade(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	older := domain.NewTicket("t1", "u1", "printer", nil, base)
	newer := domain.NewTicket("t2", "u1", "network", nil, base.Add(time.Hour))
	other := domain.NewTicket("t3", "u2", "vpn", nil, base.Add(30*time.Minute))
	for _, tk := range []*domain.Ticket{older, newer, other} {
		if err := s.Tickets().Create(ctx, tk); err != nil {
			t.Fatalf("create ticket: %v", err)
		}
	}

	mine, _ := s.Tickets().List(ctx, "u1")
	if len(mine) != 2 || mine[0].ID != "t2" || mine[1].ID != "t1" {
		t.Fatalf("expected newest first, got %+v", mine)
	}
	all, _ := s.Tickets().List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(all))
	}

	_ = s.Responses().Create(ctx, &domain.Response{ID: "a", TicketID: "t1", ResponderID: "u2", Message: "second", CreatedAt: base.Add(2 * time.Minute)})
	_ = s.Responses().Create(ctx, &domain.Response{ID: "b", TicketID: "t1", ResponderID: "u1", Message: "first", CreatedAt: base.Add(time.Minute)})

	rs, _ := s.Responses().ListByTicket(ctx, "t1")
	if len(rs) != 2 || rs[0].Message != "first" {
		t.Fatalf("expected oldest first, got %+v", rs)
	}

	if deleted, _ := s.Tickets().Delete(ctx, "t1"); !deleted {
		t.Fatalf("expected delete")
	}
	if _, err := s.Responses().FindByID(ctx, "a"); !errors.Is(err, domain.ErrResponseNotFound) {
		t.Fatalf("response survived ticket delete: %v", err)
	}
}

func TestTicketRepository_ReturnsCopies(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	desc := "paper jam"
	_ = s.Tickets().Create(ctx, domain.NewTicket("t1", "u1", "printer", &desc, base))

	got, _ := s.Tickets().FindByID(ctx, "t1")
	*got.Description = "changed"
	got.Title = "changed"

	again, _ := s.Tickets().FindByID(ctx, "t1")
	if again.Title != "printer" || *again.Description != "paper jam" {
		t.Fatalf("stored ticket was mutated through a returned pointer: %+v", again)
	}
}

func TestStore_RunInTxRollsBack(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.Users().Create(ctx, &domain.User{ID: "u3", Username: "carol"}); err != nil {
			return err
		}
		if err := s.Memberships().ReplaceForUser(ctx, "u3", []domain.Membership{{UserID: "u3", RoleID: "r1"}}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.Users().FindByID(ctx, "u3"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("user survived rollback: %v", err)
	}
	if ms, _ := s.Memberships().ListByUser(ctx, "u3"); len(ms) != 0 {
		t.Fatalf("memberships survived rollback: %+v", ms)
	}
}

func TestStore_RunInTxCommits(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		return s.Users().Create(ctx, &domain.User{ID: "u3", Username: "carol"})
	})
	if err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
	if _, err := s.Users().FindByUsername(ctx, "carol"); err != nil {
		t.Fatalf("committed user missing: %v", err)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	s := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Users().FindByID(ctx, "u1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := s.RunInTx(ctx, func(context.Context) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
