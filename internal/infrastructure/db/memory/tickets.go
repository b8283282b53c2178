package memory

import (
	"context"
	"sort"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// TicketRepository implements ports.TicketRepository.
type TicketRepository struct {
	s *Store
}

func (r *TicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return cloneTicket(t), nil
}

func (r *TicketRepository) List(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Ticket, 0)
	for _, t := range r.s.tickets {
		if userID != "" && t.UserID != userID {
			continue
		}
		out = append(out, cloneTicket(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[t.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.tickets[t.ID] = *cloneTicket(*t)
	return nil
}

func (r *TicketRepository) Update(ctx context.Context, t *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tickets[t.ID]; !ok {
		return domain.ErrTicketNotFound
	}
	r.s.tickets[t.ID] = *cloneTicket(*t)
	return nil
}

func (r *TicketRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tickets[id]; !ok {
		return false, nil
	}
	delete(r.s.tickets, id)
	for rid, resp := range r.s.responses {
		if resp.TicketID == id {
			delete(r.s.responses, rid)
		}
	}
	return true, nil
}

func cloneTicket(t domain.Ticket) *domain.Ticket {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.ClosedAt != nil {
		c := *t.ClosedAt
		t.ClosedAt = &c
	}
	return &t
}

// ResponseRepository implements ports.ResponseRepository.
type ResponseRepository struct {
	s *Store
}

func (r *ResponseRepository) FindByID(ctx context.Context, id string) (*domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	resp, ok := r.s.responses[id]
	if !ok {
		return nil, domain.ErrResponseNotFound
	}
	return &resp, nil
}

func (r *ResponseRepository) ListByTicket(ctx context.Context, ticketID string) ([]*domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Response, 0)
	for _, resp := range r.s.responses {
		if resp.TicketID == ticketID {
			resp := resp
			out = append(out, &resp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ResponseRepository) Create(ctx context.Context, resp *domain.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tickets[resp.TicketID]; !ok {
		return domain.ErrTicketNotFound
	}
	if _, ok := r.s.users[resp.ResponderID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.responses[resp.ID] = *resp
	return nil
}

func (r *ResponseRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.responses[id]; !ok {
		return false, nil
	}
	delete(r.s.responses, id)
	return true, nil
}
