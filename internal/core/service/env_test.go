package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
	"github.com/helpdesk/ticket-system/internal/infrastructure/db/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	store     *memory.Store
	creds     *CredentialVerifier
	tokens    *TokenService
	manager   *MembershipManager
	auth      *AuthService
	users     *UserService
	roles     *RoleService
	tickets   *TicketService
	responses *ResponseService
	idem      *stubIdempotency

	admin   domain.Principal
	support domain.Principal
	alice   domain.Principal
	bob     domain.Principal
}

// newTestEnv wires every service over a fresh memory store with the default
// roles and four users: ada (admin), sam (support), alice and bob (client).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()

	store := memory.NewStore()
	env := &testEnv{
		store:  store,
		creds:  NewCredentialVerifier(4),
		tokens: NewTokenService(testSecret, "helpdesk-api", "helpdesk-clients", time.Hour),
		idem:   newStubIdempotency(),
	}
	env.manager = NewMembershipManager(store.Roles(), store.Memberships())
	env.auth = NewAuthService(store.Users(), store.Memberships(), env.creds, env.tokens, log)
	env.users = NewUserService(store, store.Users(), store.Memberships(), env.manager, env.creds, log)
	env.roles = NewRoleService(store, store.Roles(), log)
	env.tickets = NewTicketService(store, store.Tickets(), store.Responses(), store.Users(), env.idem, log)
	env.responses = NewResponseService(store, store.Responses(), store.Tickets(), store.Users(), log)

	boot := NewBootstrapper(store, store.Users(), store.Roles(), env.manager, env.creds, log)
	if err := boot.EnsureRoles(ctx); err != nil {
		t.Fatalf("EnsureRoles: %v", err)
	}
	if err := boot.EnsureAdmin(ctx, "ada", "adminpass"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	ada, err := store.Users().FindByUsername(ctx, "ada")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	env.admin = domain.Principal{ID: ada.ID, Username: "ada", Roles: []string{domain.RoleAdmin}}
	env.support = env.mustCreateUser(t, "sam", domain.RoleSupport)
	env.alice = env.mustCreateUser(t, "alice", domain.RoleClient)
	env.bob = env.mustCreateUser(t, "bob", domain.RoleClient)
	return env
}

func (e *testEnv) mustCreateUser(t *testing.T, username string, roles ...string) domain.Principal {
	t.Helper()
	v, err := e.users.Create(context.Background(), e.admin, createUserInput(username, roles...))
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return domain.Principal{ID: v.ID, Username: v.Username, Roles: v.Roles}
}

type stubIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Reserve(_ context.Context, userID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userID + "/" + key
	if held, ok := s.keys[k]; ok {
		return held, nil
	}
	s.keys[k] = ports.IdempotencyPending
	return "", nil
}

func (s *stubIdempotency) Complete(_ context.Context, userID, key, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[userID+"/"+key] = ticketID
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, userID+"/"+key)
	return nil
}

func strPtr(s string) *string { return &s }

func createUserInput(username string, roles ...string) ports.CreateUserInput {
	return ports.CreateUserInput{
		Username: username,
		Password: username + "-pass",
		Email:    username + "@example.com",
		Roles:    roles,
	}
}

// stubUserRepo fails every call with err.
type stubUserRepo struct {
	err error
}

func (r *stubUserRepo) FindByID(context.Context, string) (*domain.User, error) { return nil, r.err }

func (r *stubUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, r.err
}

func (r *stubUserRepo) ExistsByEmail(context.Context, string, string) (bool, error) {
	return false, r.err
}

func (r *stubUserRepo) List(context.Context) ([]*domain.User, error) { return nil, r.err }

func (r *stubUserRepo) Create(context.Context, *domain.User) error { return r.err }

func (r *stubUserRepo) Update(context.Context, *domain.User) error { return r.err }

func (r *stubUserRepo) Delete(context.Context, string) (bool, error) { return false, r.err }
