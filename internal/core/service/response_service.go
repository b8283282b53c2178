package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

type ResponseService struct {
	tx        ports.TxManager
	responses ports.ResponseRepository
	tickets   ports.TicketRepository
	users     ports.UserRepository
	log       zerolog.Logger
	now       func() time.Time
}

func NewResponseService(
	tx ports.TxManager,
	responses ports.ResponseRepository,
	tickets ports.TicketRepository,
	users ports.UserRepository,
	log zerolog.Logger,
) *ResponseService {
	return &ResponseService{
		tx:        tx,
		responses: responses,
		tickets:   tickets,
		users:     users,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListByTicket returns the ticket's responses oldest first. Access follows
// the ticket's owner, not the authors of the responses.
func (s *ResponseService) ListByTicket(ctx context.Context, p domain.Principal, ticketID string) ([]ports.ResponseView, error) {
	if err := domain.Authorize(p, domain.OpReadResponses); err != nil {
		return nil, err
	}

	t, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeOwner(p, domain.OpReadResponses, t.UserID); err != nil {
		return nil, err
	}

	rs, err := s.responses.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return toResponseViews(ctx, newUsernameCache(s.users), rs)
}

func (s *ResponseService) Get(ctx context.Context, p domain.Principal, id string) (*ports.ResponseView, error) {
	if err := domain.Authorize(p, domain.OpReadResponses); err != nil {
		return nil, err
	}

	r, err := s.responses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.tickets.FindByID(ctx, r.TicketID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeOwner(p, domain.OpReadResponses, t.UserID); err != nil {
		return nil, err
	}

	views, err := toResponseViews(ctx, newUsernameCache(s.users), []*domain.Response{r})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create posts a response. A caller whose only policy role is client may
// respond only on tickets they own.
func (s *ResponseService) Create(ctx context.Context, p domain.Principal, in ports.CreateResponseInput) (*ports.ResponseView, error) {
	if err := domain.Authorize(p, domain.OpCreateResponse); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	r := &domain.Response{
		ID:          uuid.NewString(),
		TicketID:    in.TicketID,
		ResponderID: p.ID,
		Message:     message,
		CreatedAt:   s.now(),
	}

	var responder string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := s.tickets.FindByID(ctx, in.TicketID)
		if err != nil {
			return err
		}
		if err := domain.AuthorizeOwner(p, domain.OpCreateResponse, t.UserID); err != nil {
			return err
		}
		u, err := s.users.FindByID(ctx, p.ID)
		if err != nil {
			return err
		}
		responder = u.Username
		if err := s.responses.Create(ctx, r); err != nil {
			return fmt.Errorf("create response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("response_id", r.ID).Str("ticket_id", r.TicketID).Str("by", p.ID).Msg("response created")
	return &ports.ResponseView{
		ID:                r.ID,
		TicketID:          r.TicketID,
		ResponderID:       r.ResponderID,
		ResponderUsername: responder,
		Message:           r.Message,
		CreatedAt:         r.CreatedAt,
	}, nil
}

func (s *ResponseService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := domain.Authorize(p, domain.OpDeleteResponse); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		deleted, err := s.responses.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete response: %w", err)
		}
		if !deleted {
			return domain.ErrResponseNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("response_id", id).Str("by", p.ID).Msg("response deleted")
	return nil
}

func toResponseViews(ctx context.Context, names *usernameCache, rs []*domain.Response) ([]ports.ResponseView, error) {
	views := make([]ports.ResponseView, 0, len(rs))
	for _, r := range rs {
		name, err := names.lookup(ctx, r.ResponderID)
		if err != nil {
			return nil, err
		}
		views = append(views, ports.ResponseView{
			ID:                r.ID,
			TicketID:          r.TicketID,
			ResponderID:       r.ResponderID,
			ResponderUsername: name,
			Message:           r.Message,
			CreatedAt:         r.CreatedAt,
		})
	}
	return views, nil
}
