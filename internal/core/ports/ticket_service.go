package ports

import (
	"context"
	"time"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

type CreateTicketInput struct {
	Title       string
	Description *string
	// IdempotencyKey, when set, makes retries return the ticket created by
	// the first request instead of creating another one.
	IdempotencyKey string
}

// ResponseView is a response enriched with the responder's username.
type ResponseView struct {
	ID                string
	TicketID          string
	ResponderID       string
	ResponderUsername string
	Message           string
	CreatedAt         time.Time
}

// TicketDetail is the full ticket view, including its responses oldest first.
type TicketDetail struct {
	ID          string
	UserID      string
	Username    string
	Title       string
	Description *string
	Status      string
	CreatedAt   time.Time
	ClosedAt    *time.Time
	Responses   []ResponseView
	// AlreadyExisted is true when an idempotency key replayed a prior create.
	AlreadyExisted bool
}

type TicketService interface {
	ListAll(ctx context.Context, p domain.Principal) ([]TicketDetail, error)
	ListMine(ctx context.Context, p domain.Principal) ([]TicketDetail, error)
	Get(ctx context.Context, p domain.Principal, id string) (*TicketDetail, error)
	Create(ctx context.Context, p domain.Principal, in CreateTicketInput) (*TicketDetail, error)
	Update(ctx context.Context, p domain.Principal, id string, u domain.TicketUpdate) (*TicketDetail, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}

type CreateResponseInput struct {
	TicketID string
	Message  string
}

type ResponseService interface {
	ListByTicket(ctx context.Context, p domain.Principal, ticketID string) ([]ResponseView, error)
	Get(ctx context.Context, p domain.Principal, id string) (*ResponseView, error)
	Create(ctx context.Context, p domain.Principal, in CreateResponseInput) (*ResponseView, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
