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

type TicketService struct {
	tx        ports.TxManager
	tickets   ports.TicketRepository
	responses ports.ResponseRepository
	users     ports.UserRepository
	idem      ports.IdempotencyStore
	log       zerolog.Logger
	now       func() time.Time
}

// NewTicketService wires the ticket use cases. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewTicketService(
	tx ports.TxManager,
	tickets ports.TicketRepository,
	responses ports.ResponseRepository,
	users ports.UserRepository,
	idem ports.IdempotencyStore,
	log zerolog.Logger,
) *TicketService {
	return &TicketService{
		tx:        tx,
		tickets:   tickets,
		responses: responses,
		users:     users,
		idem:      idem,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListAll returns every ticket, newest first.
func (s *TicketService) ListAll(ctx context.Context, p domain.Principal) ([]ports.TicketDetail, error) {
	if err := domain.Authorize(p, domain.OpListAllTickets); err != nil {
		return nil, err
	}
	return s.list(ctx, "")
}

// ListMine returns the caller's tickets, newest first.
func (s *TicketService) ListMine(ctx context.Context, p domain.Principal) ([]ports.TicketDetail, error) {
	if err := domain.Authorize(p, domain.OpListOwnTickets); err != nil {
		return nil, err
	}
	return s.list(ctx, p.ID)
}

func (s *TicketService) Get(ctx context.Context, p domain.Principal, id string) (*ports.TicketDetail, error) {
	if err := domain.Authorize(p, domain.OpReadTicket); err != nil {
		return nil, err
	}

	t, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeOwner(p, domain.OpReadTicket, t.UserID); err != nil {
		return nil, err
	}
	return s.detail(ctx, t)
}

// Create opens a ticket owned by the caller. An idempotency key is claimed
// before the write: a key already bound to one of the caller's tickets replays
// that ticket, and a key whose create is still running yields
// domain.ErrRequestInProgress.
func (s *TicketService) Create(ctx context.Context, p domain.Principal, in ports.CreateTicketInput) (*ports.TicketDetail, error) {
	if err := domain.Authorize(p, domain.OpCreateTicket); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	claimed, replay, err := s.claim(ctx, p, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	t := domain.NewTicket(uuid.NewString(), p.ID, in.Title, in.Description, s.now())
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByID(ctx, p.ID); err != nil {
			return err
		}
		if err := s.tickets.Create(ctx, t); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		if claimed {
			if rerr := s.idem.Release(ctx, p.ID, in.IdempotencyKey); rerr != nil {
				s.log.Warn().Err(rerr).Msg("failed to release idempotency key")
			}
		}
		s.log.Error().Err(err).Str("user_id", p.ID).Msg("failed to create ticket")
		return nil, err
	}

	if claimed {
		if err := s.idem.Complete(ctx, p.ID, in.IdempotencyKey, t.ID); err != nil {
			s.log.Warn().Err(err).Str("ticket_id", t.ID).Msg("failed to record idempotency key")
		}
	}

	s.log.Info().Str("ticket_id", t.ID).Str("user_id", p.ID).Msg("ticket created")
	return s.detail(ctx, t)
}

// Update applies a partial update and the lifecycle rules for status and
// closing time.
func (s *TicketService) Update(ctx context.Context, p domain.Principal, id string, u domain.TicketUpdate) (*ports.TicketDetail, error) {
	if err := domain.Authorize(p, domain.OpUpdateTicket); err != nil {
		return nil, err
	}

	var updated *domain.Ticket
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := s.tickets.FindByID(ctx, id)
		if err != nil {
			return err
		}
		t.Apply(u, s.now())
		if err := s.tickets.Update(ctx, t); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("ticket_id", id).Str("status", updated.Status).Str("by", p.ID).Msg("ticket updated")
	return s.detail(ctx, updated)
}

// Delete removes the ticket together with its responses.
func (s *TicketService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := domain.Authorize(p, domain.OpDeleteTicket); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		deleted, err := s.tickets.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete ticket: %w", err)
		}
		if !deleted {
			return domain.ErrTicketNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("ticket_id", id).Str("by", p.ID).Msg("ticket deleted")
	return nil
}

// claim reserves key for the caller. claimed reports that this call owns the
// key and must complete or release it. A key bound to a ticket that no longer
// exists is taken over.
func (s *TicketService) claim(ctx context.Context, p domain.Principal, key string) (claimed bool, replay *ports.TicketDetail, err error) {
	if key == "" || s.idem == nil {
		return false, nil, nil
	}

	held, err := s.idem.Reserve(ctx, p.ID, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("idempotency reserve failed, creating anyway")
		return false, nil, nil
	}
	switch held {
	case "":
		return true, nil, nil
	case ports.IdempotencyPending:
		return false, nil, domain.ErrRequestInProgress
	}

	t, err := s.tickets.FindByID(ctx, held)
	if err != nil || t.UserID != p.ID {
		return true, nil, nil
	}
	d, err := s.detail(ctx, t)
	if err != nil {
		return false, nil, err
	}
	s.log.Info().Str("idempotency_key", key).Str("ticket_id", t.ID).Msg("idempotent replay")
	d.AlreadyExisted = true
	return false, d, nil
}

func (s *TicketService) list(ctx context.Context, userID string) ([]ports.TicketDetail, error) {
	tickets, err := s.tickets.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	out := make([]ports.TicketDetail, 0, len(tickets))
	for _, t := range tickets {
		d, err := s.detail(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *TicketService) detail(ctx context.Context, t *domain.Ticket) (*ports.TicketDetail, error) {
	rs, err := s.responses.ListByTicket(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	names := newUsernameCache(s.users)
	owner, err := names.lookup(ctx, t.UserID)
	if err != nil {
		return nil, err
	}
	views, err := toResponseViews(ctx, names, rs)
	if err != nil {
		return nil, err
	}

	return &ports.TicketDetail{
		ID:          t.ID,
		UserID:      t.UserID,
		Username:    owner,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		ClosedAt:    t.ClosedAt,
		Responses:   views,
	}, nil
}

// usernameCache resolves user ids to usernames once per request. Missing
// users resolve to an empty name.
type usernameCache struct {
	users ports.UserRepository
	names map[string]string
}

func newUsernameCache(users ports.UserRepository) *usernameCache {
	return &usernameCache{users: users, names: make(map[string]string)}
}

func (c *usernameCache) lookup(ctx context.Context, id string) (string, error) {
	if name, ok := c.names[id]; ok {
		return name, nil
	}
	u, err := c.users.FindByID(ctx, id)
	switch {
	case err == nil:
		c.names[id] = u.Username
	case errors.Is(err, domain.ErrUserNotFound):
		c.names[id] = ""
	default:
		return "", fmt.Errorf("load user: %w", err)
	}
	return c.names[id], nil
}
