package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/helpdesk/ticket-system/docs"
	"github.com/helpdesk/ticket-system/internal/api/handler"
	"github.com/helpdesk/ticket-system/internal/api/middleware"
	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
	"github.com/helpdesk/ticket-system/internal/infrastructure/http/handlers"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth      ports.AuthService
	Tokens    ports.TokenService
	Tickets   ports.TicketService
	Responses ports.ResponseService
	Users     ports.UserService
	Roles     ports.RoleService
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Readiness reports on every check passed in.
func NewRouter(svc Services, log zerolog.Logger, checks ...handlers.Check) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("helpdesk"))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(svc.Auth)
	ticketHandler := handler.NewTicketHandler(svc.Tickets)
	responseHandler := handler.NewResponseHandler(svc.Responses)
	userHandler := handler.NewUserHandler(svc.Users)
	roleHandler := handler.NewRoleHandler(svc.Roles)

	api := e.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	// --- Authenticated routes; handlers check the role before binding, services check again ---
	bearer := middleware.Auth(svc.Tokens)

	tickets := api.Group("/tickets", bearer)
	tickets.GET("", ticketHandler.ListAll)
	tickets.GET("/mine", ticketHandler.ListMine)
	tickets.GET("/:id", ticketHandler.Get)
	tickets.POST("", ticketHandler.Create)
	tickets.PUT("/:id", ticketHandler.Update)
	tickets.DELETE("/:id", ticketHandler.Delete)

	responses := api.Group("/responses", bearer)
	responses.GET("/ticket/:ticketId", responseHandler.ListByTicket)
	responses.GET("/:id", responseHandler.Get)
	responses.POST("", responseHandler.Create)
	responses.DELETE("/:id", responseHandler.Delete)

	// --- Administration ---
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	roles := api.Group("/roles", bearer, adminOnly)
	roles.GET("", roleHandler.List)
	roles.GET("/:id", roleHandler.Get)
	roles.POST("", roleHandler.Create)
	roles.DELETE("/:id", roleHandler.Delete)

	users := api.Group("/users", bearer, adminOnly)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	return e
}
