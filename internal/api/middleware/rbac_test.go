package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

func newRBACContext(p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if p != nil {
		SetPrincipal(c, *p)
	}
	return c, rec
}

func TestRequireRoles_Allowed(t *testing.T) {
	c, rec := newRBACContext(&domain.Principal{ID: "u1", Roles: []string{"client", "admin"}})

	called := false
	h := RequireRoles("admin")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestRequireRoles_Forbidden(t *testing.T) {
	c, rec := newRBACContext(&domain.Principal{ID: "u1", Roles: []string{"Admin"}})

	h := RequireRoles("admin")(func(c echo.Context) error {
		t.Fatalf("next must not be called")
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for case-mismatched role, got %d", rec.Code)
	}
}

func TestRequireRoles_NoPrincipal(t *testing.T) {
	c, _ := newRBACContext(nil)

	err := RequireRoles("admin")(func(echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
