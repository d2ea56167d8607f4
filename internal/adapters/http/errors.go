package http

import (
	"net/http"

	"github.com/todoflow/core/internal/domain/entities"
)

// Error codes returned in the error envelope.
const (
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeTodoNotFound    = "TODO_NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
)

// APIError is a typed error carrying the HTTP status and machine-readable
// code rendered into the {error, code} envelope.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates an APIError with an explicit status and code.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// Unauthorized returns the standard 401 envelope.
func Unauthorized() *APIError {
	return NewAPIError(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
}

// FromDomain maps a domain error onto the wire taxonomy. Infrastructure
// failures become DATABASE_ERROR so raw driver errors never reach clients.
func FromDomain(err error) *APIError {
	switch err {
	case entities.ErrTodoNotFound:
		return NewAPIError(http.StatusNotFound, CodeTodoNotFound, "Todo not found")
	case entities.ErrUserNotFound:
		return NewAPIError(http.StatusNotFound, CodeUserNotFound, "User not found")
	case entities.ErrUnauthorized:
		return Unauthorized()
	case entities.ErrEmptyText, entities.ErrInvalidLevel, entities.ErrNegativeTime:
		return NewAPIError(http.StatusBadRequest, CodeValidationError, err.Error())
	default:
		return NewAPIError(http.StatusInternalServerError, CodeDatabaseError, "Database error occurred")
	}
}
