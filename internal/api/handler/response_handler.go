package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

// ResponseHandler handles HTTP requests for ticket responses.
type ResponseHandler struct {
	service ports.ResponseService
}

func NewResponseHandler(service ports.ResponseService) *ResponseHandler {
	return &ResponseHandler{service: service}
}

// ListByTicket handles GET /api/responses/ticket/:ticketId.
//
// @Summary      List a ticket's responses, oldest first
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        ticketId  path      string  true  "Ticket ID"
// @Success      200       {array}   responseResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/responses/ticket/{ticketId} [get]
func (h *ResponseHandler) ListByTicket(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListByTicket(c.Request().Context(), p, c.Param("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponseResponses(views))
}

// Get handles GET /api/responses/:id.
//
// @Summary      Get a response
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Response ID"
// @Success      200  {object}  responseResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/responses/{id} [get]
func (h *ResponseHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	v, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponseResponse(v))
}

// Create handles POST /api/responses.
//
// @Summary      Respond to a ticket
// @Tags         responses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createResponseRequest  true  "Response"
// @Success      201   {object}  responseResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/responses [post]
func (h *ResponseHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createResponseRequest
	if err := authorizeAndBind(c, p, domain.OpCreateResponse, &req); err != nil {
		return err
	}

	v, err := h.service.Create(c.Request().Context(), p, ports.CreateResponseInput{
		TicketID: req.TicketID,
		Message:  req.Message,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toResponseResponse(v))
}

// Delete handles DELETE /api/responses/:id.
//
// @Summary      Delete a response
// @Tags         responses
// @Security     BearerAuth
// @Param        id   path  string  true  "Response ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/responses/{id} [delete]
func (h *ResponseHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
