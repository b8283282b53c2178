package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/ticket-system/internal/api/metrics"
	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

// TicketHandler handles HTTP requests for ticket operations.
type TicketHandler struct {
	service ports.TicketService
}

func NewTicketHandler(service ports.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// ListAll handles GET /api/tickets.
//
// @Summary      List every ticket
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ticketResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/tickets [get]
func (h *TicketHandler) ListAll(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	details, err := h.service.ListAll(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponses(details))
}

// ListMine handles GET /api/tickets/mine.
//
// @Summary      List the caller's tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ticketResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/tickets/mine [get]
func (h *TicketHandler) ListMine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	details, err := h.service.ListMine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponses(details))
}

// Get handles GET /api/tickets/:id.
//
// @Summary      Get a ticket with its responses
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Ticket ID"
// @Success      200  {object}  ticketResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tickets/{id} [get]
func (h *TicketHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	d, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(d))
}

// Create handles POST /api/tickets. A repeated Idempotency-Key returns the
// ticket created by the first request with 200 instead of 201.
//
// @Summary      Open a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Client-generated key for safe retries"
// @Param        body             body      createTicketRequest  true   "Ticket"
// @Success      201              {object}  ticketResponse
// @Success      200              {object}  ticketResponse
// @Failure      400              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createTicketRequest
	if err := authorizeAndBind(c, p, domain.OpCreateTicket, &req); err != nil {
		return err
	}

	d, err := h.service.Create(c.Request().Context(), p, ports.CreateTicketInput{
		Title:          req.Title,
		Description:    req.Description,
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	if d.AlreadyExisted {
		return c.JSON(http.StatusOK, toTicketResponse(d))
	}
	metrics.TicketsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toTicketResponse(d))
}

// Update handles PUT /api/tickets/:id.
//
// @Summary      Update a ticket
// @Description  Absent fields are left unchanged. Setting status to "closed" stamps closed_at; any other status clears it. An explicit closed_at always wins.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Ticket ID"
// @Param        body  body      updateTicketRequest  true  "Changes"
// @Success      200   {object}  ticketResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/tickets/{id} [put]
func (h *TicketHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateTicketRequest
	if err := authorizeAndBind(c, p, domain.OpUpdateTicket, &req); err != nil {
		return err
	}

	d, err := h.service.Update(c.Request().Context(), p, c.Param("id"), domain.TicketUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		ClosedAt:    req.ClosedAt,
	})
	if err != nil {
		return err
	}

	if req.Status != nil {
		metrics.TicketStatusChangesTotal.WithLabelValues(statusLabel(d.Status)).Inc()
	}
	return c.JSON(http.StatusOK, toTicketResponse(d))
}

// Delete handles DELETE /api/tickets/:id.
//
// @Summary      Delete a ticket and its responses
// @Tags         tickets
// @Security     BearerAuth
// @Param        id   path  string  true  "Ticket ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tickets/{id} [delete]
func (h *TicketHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func toTicketResponses(details []ports.TicketDetail) []ticketResponse {
	out := make([]ticketResponse, 0, len(details))
	for i := range details {
		out = append(out, toTicketResponse(&details[i]))
	}
	return out
}

func statusLabel(status string) string {
	switch {
	case domain.IsClosedStatus(status):
		return domain.StatusClosed
	case strings.EqualFold(strings.TrimSpace(status), domain.StatusOpen):
		return domain.StatusOpen
	default:
		return "other"
	}
}
