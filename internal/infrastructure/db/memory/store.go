// Package memory is a process-local store used for tests and for running the
// API without MongoDB. Every value is copied on the way in and out.
package memory

import (
	"context"
	"sync"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// Store holds all helpdesk state behind a single RWMutex.
//
// RunInTx serializes units of work and restores a snapshot when fn fails.
// Writes performed outside RunInTx while a unit of work is rolling back can
// be lost, so services route every write through RunInTx.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	roles       map[string]domain.Role
	memberships map[string][]domain.Membership // by user id
	tickets     map[string]domain.Ticket
	responses   map[string]domain.Response

	txMu sync.Mutex
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		roles:       make(map[string]domain.Role),
		memberships: make(map[string][]domain.Membership),
		tickets:     make(map[string]domain.Ticket),
		responses:   make(map[string]domain.Response),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (s *Store) Roles() *RoleRepository { return &RoleRepository{s: s} }

func (s *Store) Memberships() *MembershipRepository { return &MembershipRepository{s: s} }

func (s *Store) Tickets() *TicketRepository { return &TicketRepository{s: s} }

func (s *Store) Responses() *ResponseRepository { return &ResponseRepository{s: s} }

// RunInTx implements ports.TxManager.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users       map[string]domain.User
	roles       map[string]domain.Role
	memberships map[string][]domain.Membership
	tickets     map[string]domain.Ticket
	responses   map[string]domain.Response
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		users:       make(map[string]domain.User, len(s.users)),
		roles:       make(map[string]domain.Role, len(s.roles)),
		memberships: make(map[string][]domain.Membership, len(s.memberships)),
		tickets:     make(map[string]domain.Ticket, len(s.tickets)),
		responses:   make(map[string]domain.Response, len(s.responses)),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.roles {
		snap.roles[k] = v
	}
	for k, v := range s.memberships {
		snap.memberships[k] = append([]domain.Membership(nil), v...)
	}
	for k, v := range s.tickets {
		snap.tickets[k] = v
	}
	for k, v := range s.responses {
		snap.responses[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.roles = snap.roles
	s.memberships = snap.memberships
	s.tickets = snap.tickets
	s.responses = snap.responses
}
