package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/ticket-system/internal/api/metrics"
)

// RequireRoles admits principals holding at least one of roles. It must run
// after Auth. Role names match case-sensitively.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, r := range roles {
				if p.HasRole(r) {
					return next(c)
				}
			}
			metrics.AccessDeniedTotal.WithLabelValues(c.Path()).Inc()
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
		}
	}
}
