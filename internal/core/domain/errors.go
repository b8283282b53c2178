package domain

import (
	"errors"
	"strings"
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
)

// Authorization errors.
var ErrForbidden = errors.New("access forbidden")

// Lookup errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrResponseNotFound = errors.New("response not found")
)

// Conflict errors.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateRoleName = errors.New("role already exists")
	ErrRequestInProgress = errors.New("request with this idempotency key is in progress")
)

// ErrValidation marks client input rejected before any write.
var ErrValidation = errors.New("validation failed")

// MissingRolesError reports every requested role name that did not resolve.
type MissingRolesError struct {
	Names []string
}

func (e *MissingRolesError) Error() string {
	return "roles not found: " + strings.Join(e.Names, ", ")
}

// Is lets errors.Is(err, ErrRoleNotFound) match aggregated failures.
func (e *MissingRolesError) Is(target error) bool {
	return target == ErrRoleNotFound
}
