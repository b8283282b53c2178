package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/ticket-system/internal/api/middleware"
	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

type stubTicketService struct {
	createFn func(ctx context.Context, p domain.Principal, in ports.CreateTicketInput) (*ports.TicketDetail, error)
	updateFn func(ctx context.Context, p domain.Principal, id string, u domain.TicketUpdate) (*ports.TicketDetail, error)
	getFn    func(ctx context.Context, p domain.Principal, id string) (*ports.TicketDetail, error)
}

func (s *stubTicketService) ListAll(context.Context, domain.Principal) ([]ports.TicketDetail, error) {
	return nil, nil
}

func (s *stubTicketService) ListMine(context.Context, domain.Principal) ([]ports.TicketDetail, error) {
	return []ports.TicketDetail{}, nil
}

func (s *stubTicketService) Get(ctx context.Context, p domain.Principal, id string) (*ports.TicketDetail, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubTicketService) Create(ctx context.Context, p domain.Principal, in ports.CreateTicketInput) (*ports.TicketDetail, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubTicketService) Update(ctx context.Context, p domain.Principal, id string, u domain.TicketUpdate) (*ports.TicketDetail, error) {
	return s.updateFn(ctx, p, id, u)
}

func (s *stubTicketService) Delete(context.Context, domain.Principal, string) error {
	return nil
}

var alice = domain.Principal{ID: "u1", Username: "alice", Roles: []string{domain.RoleClient}}

func authed(c echo.Context, p domain.Principal) echo.Context {
	middleware.SetPrincipal(c, p)
	return c
}

func TestTicketHandler_Create(t *testing.T) {
	created := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	stub := &stubTicketService{
		createFn: func(_ context.Context, p domain.Principal, in ports.CreateTicketInput) (*ports.TicketDetail, error) {
			if p.ID != "u1" || in.Title != "Printer" || in.Description == nil || *in.Description != "jammed" {
				t.Fatalf("unexpected input: %+v %+v", p, in)
			}
			if in.IdempotencyKey != "abc" {
				t.Fatalf("idempotency key not forwarded: %q", in.IdempotencyKey)
			}
			return &ports.TicketDetail{ID: "t1", UserID: p.ID, Username: "alice", Title: in.Title, Description: in.Description, Status: "open", CreatedAt: created}, nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/api/tickets", `{"title":"Printer","description":"jammed"}`)
	c.Request().Header.Set("Idempotency-Key", "abc")
	if err := NewTicketHandler(stub).Create(authed(c, alice)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp ticketResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "t1" || resp.Status != "open" || resp.ClosedAt != nil || resp.Responses == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTicketHandler_CreateReplayReturns200(t *testing.T) {
	stub := &stubTicketService{
		createFn: func(context.Context, domain.Principal, ports.CreateTicketInput) (*ports.TicketDetail, error) {
			return &ports.TicketDetail{ID: "t1", Status: "open", AlreadyExisted: true}, nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/api/tickets", `{"title":"Printer"}`)
	if err := NewTicketHandler(stub).Create(authed(c, alice)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestTicketHandler_CreateValidation(t *testing.T) {
	stub := &stubTicketService{
		createFn: func(context.Context, domain.Principal, ports.CreateTicketInput) (*ports.TicketDetail, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}

	c, _ := newJSONContext(http.MethodPost, "/api/tickets", `{"description":"no title"}`)
	err := NewTicketHandler(stub).Create(authed(c, alice))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTicketHandler_RoleGateRunsBeforeValidation(t *testing.T) {
	stub := &stubTicketService{
		createFn: func(context.Context, domain.Principal, ports.CreateTicketInput) (*ports.TicketDetail, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
		updateFn: func(context.Context, domain.Principal, string, domain.TicketUpdate) (*ports.TicketDetail, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	support := domain.Principal{ID: "s1", Roles: []string{domain.RoleSupport}}

	c, _ := newJSONContext(http.MethodPost, "/api/tickets", `{"title":""}`)
	if err := NewTicketHandler(stub).Create(authed(c, support)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("create by support: expected ErrForbidden, got %v", err)
	}

	c, _ = newJSONContext(http.MethodPut, "/api/tickets/t1", `{"status":"`+strings.Repeat("x", 60)+`"}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	if err := NewTicketHandler(stub).Update(authed(c, alice)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update by client: expected ErrForbidden, got %v", err)
	}
}

func TestTicketHandler_UpdatePassesPartialFields(t *testing.T) {
	stub := &stubTicketService{
		updateFn: func(_ context.Context, _ domain.Principal, id string, u domain.TicketUpdate) (*ports.TicketDetail, error) {
			if id != "t1" {
				t.Fatalf("unexpected id %q", id)
			}
			if u.Title != nil || u.Description != nil || u.Status == nil || *u.Status != "closed" {
				t.Fatalf("unexpected update: %+v", u)
			}
			if u.ClosedAt == nil || u.ClosedAt.Year() != 2026 {
				t.Fatalf("closed_at not decoded: %v", u.ClosedAt)
			}
			return &ports.TicketDetail{ID: id, Status: "closed", ClosedAt: u.ClosedAt}, nil
		},
	}

	c, rec := newJSONContext(http.MethodPut, "/api/tickets/t1", `{"status":"closed","closed_at":"2026-01-02T03:04:05Z"}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	if err := NewTicketHandler(stub).Update(authed(c, domain.Principal{ID: "s1", Roles: []string{"support"}})); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTicketHandler_GetPropagatesDomainErrors(t *testing.T) {
	stub := &stubTicketService{
		getFn: func(context.Context, domain.Principal, string) (*ports.TicketDetail, error) {
			return nil, domain.ErrForbidden
		},
	}

	c, _ := newJSONContext(http.MethodGet, "/api/tickets/t1", "")
	c.SetParamNames("id")
	c.SetParamValues("t1")
	if err := NewTicketHandler(stub).Get(authed(c, alice)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTicketHandler_RequiresPrincipal(t *testing.T) {
	c, _ := newJSONContext(http.MethodGet, "/api/tickets/mine", "")
	err := NewTicketHandler(&stubTicketService{}).ListMine(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestTicketHandler_ListMineEmptyArray(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/tickets/mine", "")
	if err := NewTicketHandler(&stubTicketService{}).ListMine(authed(c, alice)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestStatusLabel(t *testing.T) {
	cases := map[string]string{"Closed": "closed", " open ": "open", "waiting_on_customer": "other"}
	for in, want := range cases {
		if got := statusLabel(in); got != want {
			t.Errorf("statusLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
