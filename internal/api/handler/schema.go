package handler

import (
	"time"

	"github.com/helpdesk/ticket-system/internal/core/domain"
	"github.com/helpdesk/ticket-system/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
}

// --- Tickets ---

type createTicketRequest struct {
	Title       string  `json:"title"       validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

type updateTicketRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Status      *string    `json:"status"      validate:"omitempty,max=50"`
	ClosedAt    *time.Time `json:"closed_at"`
}

type ticketResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Username    string             `json:"username"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	ClosedAt    *time.Time         `json:"closed_at"`
	Responses   []responseResponse `json:"responses"`
}

// --- Responses ---

type createResponseRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
	Message  string `json:"message"   validate:"required,max=4000"`
}

type responseResponse struct {
	ID                string    `json:"id"`
	TicketID          string    `json:"ticket_id"`
	ResponderID       string    `json:"responder_id"`
	ResponderUsername string    `json:"responder_username"`
	Message           string    `json:"message"`
	CreatedAt         time.Time `json:"created_at"`
}

// --- Roles ---

type createRoleRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type roleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// --- Users ---

type createUserRequest struct {
	Username string   `json:"username" validate:"required,max=64"`
	Password string   `json:"password" validate:"required,max=72"`
	Email    string   `json:"email"    validate:"omitempty,email"`
	Roles    []string `json:"roles"`
}

// updateUserRequest leaves fields that are absent untouched. A present
// roles array, even an empty one, replaces every membership.
type updateUserRequest struct {
	Email    *string  `json:"email"    validate:"omitempty,email"`
	Password *string  `json:"password" validate:"omitempty,max=72"`
	Roles    []string `json:"roles"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Roles     []string  `json:"roles"`
}

// --- Mappers ---

func toTicketResponse(d *ports.TicketDetail) ticketResponse {
	return ticketResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		Username:    d.Username,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		ClosedAt:    d.ClosedAt,
		Responses:   toResponseResponses(d.Responses),
	}
}

func toResponseResponse(v *ports.ResponseView) responseResponse {
	return responseResponse{
		ID:                v.ID,
		TicketID:          v.TicketID,
		ResponderID:       v.ResponderID,
		ResponderUsername: v.ResponderUsername,
		Message:           v.Message,
		CreatedAt:         v.CreatedAt,
	}
}

func toResponseResponses(views []ports.ResponseView) []responseResponse {
	out := make([]responseResponse, 0, len(views))
	for i := range views {
		out = append(out, toResponseResponse(&views[i]))
	}
	return out
}

func toRoleResponse(r *domain.Role) roleResponse {
	return roleResponse{ID: r.ID, Name: r.Name}
}

func toUserResponse(v *ports.UserView) userResponse {
	roles := v.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{
		ID:        v.ID,
		Username:  v.Username,
		Email:     v.Email,
		CreatedAt: v.CreatedAt,
		Roles:     roles,
	}
}
