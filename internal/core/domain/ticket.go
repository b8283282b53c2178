package domain

import (
	"strings"
	"time"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Ticket is a support request filed by a user. Status is free-form; only
// "closed" (case-insensitive) drives ClosedAt.
type Ticket struct {
	ID          string     `json:"id" bson:"_id"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Title       string     `json:"title" bson:"title"`
	Description *string    `json:"description,omitempty" bson:"description,omitempty"`
	Status      string     `json:"status" bson:"status"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
}

// Response is an immutable message posted on a ticket.
type Response struct {
	ID          string    `json:"id" bson:"_id"`
	TicketID    string    `json:"ticket_id" bson:"ticket_id"`
	ResponderID string    `json:"responder_id" bson:"responder_id"`
	Message     string    `json:"message" bson:"message"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// TicketUpdate is a partial update: nil fields leave the ticket untouched.
type TicketUpdate struct {
	Title       *string
	Description *string
	Status      *string
	ClosedAt    *time.Time
}

// IsClosedStatus reports whether status denotes a closed ticket.
func IsClosedStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusClosed)
}

// NewTicket builds an open ticket owned by userID. Title must already be
// validated as non-blank.
func NewTicket(id, userID, title string, description *string, now time.Time) *Ticket {
	return &Ticket{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      StatusOpen,
		CreatedAt:   now,
	}
}

// Apply performs the lifecycle transition described by u. The explicit
// ClosedAt field is applied after the status branch, so it overrides a
// status-derived clear in the same update.
func (t *Ticket) Apply(u TicketUpdate, now time.Time) {
	if u.Title != nil {
		if title := strings.TrimSpace(*u.Title); title != "" {
			t.Title = title
		}
	}

	if u.Description != nil {
		desc := *u.Description
		t.Description = &desc
	}

	if u.Status != nil {
		if status := strings.TrimSpace(*u.Status); status != "" {
			t.Status = status
			switch {
			case IsClosedStatus(status) && t.ClosedAt == nil:
				closed := now
				t.ClosedAt = &closed
			case !IsClosedStatus(status):
				t.ClosedAt = nil
			}
		}
	}

	if u.ClosedAt != nil {
		closed := *u.ClosedAt
		t.ClosedAt = &closed
	}
}
