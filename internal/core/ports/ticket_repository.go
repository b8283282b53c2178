package ports

import (
	"context"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// TicketRepository persists tickets.
type TicketRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	// List returns tickets newest first. An empty userID lists every ticket.
	List(ctx context.Context, userID string) ([]*domain.Ticket, error)
	Create(ctx context.Context, t *domain.Ticket) error
	Update(ctx context.Context, t *domain.Ticket) error
	// Delete removes the ticket and every response attached to it. It
	// reports false when no such ticket exists.
	Delete(ctx context.Context, id string) (bool, error)
}

// ResponseRepository persists ticket responses. Responses are never updated.
type ResponseRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Response, error)
	// ListByTicket returns responses oldest first.
	ListByTicket(ctx context.Context, ticketID string) ([]*domain.Response, error)
	Create(ctx context.Context, r *domain.Response) error
	Delete(ctx context.Context, id string) (bool, error)
}

// IdempotencyPending is the value held by a key whose ticket is still being
// created.
const IdempotencyPending = "pending"

// IdempotencyStore maps an Idempotency-Key to the ticket it produced.
type IdempotencyStore interface {
	// Reserve claims key atomically. It returns "" when the claim is new,
	// otherwise the value already held: a ticket id or IdempotencyPending.
	Reserve(ctx context.Context, userID, key string) (string, error)
	// Complete replaces the claim with the created ticket id.
	Complete(ctx context.Context, userID, key, ticketID string) error
	// Release drops a claim whose create failed.
	Release(ctx context.Context, userID, key string) error
}
