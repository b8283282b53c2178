package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/ticket-system/internal/api/middleware"
	"github.com/helpdesk/ticket-system/internal/core/domain"
)

// principal returns the caller stored by the Auth middleware. A missing
// principal means the route was mounted without Auth.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// authorizeAndBind applies the role gate for op before decoding req, so a
// caller without the role gets 403 whatever the payload.
func authorizeAndBind(c echo.Context, p domain.Principal, op domain.Operation, req any) error {
	if err := domain.Authorize(p, op); err != nil {
		return err
	}
	return bindAndValidate(c, req)
}

// bindAndValidate decodes the request body into req and runs its validate
// tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
