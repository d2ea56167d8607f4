package ports

import (
	"context"
	"time"

	"github.com/todoflow/core/internal/domain/entities"
)

// TodoService interface for todo operations, scoped to the calling user
type TodoService interface {
	List(ctx context.Context, userID string) ([]*entities.Todo, error)
	Create(ctx context.Context, userID string, req CreateTodoRequest) (*entities.Todo, error)
	Update(ctx context.Context, userID, id string, req UpdateTodoRequest) (*entities.Todo, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error)
}

// UserService interface for user lifecycle operations
type UserService interface {
	UpsertFromIdentity(ctx context.Context, req IdentityProfile) (*entities.User, error)
	GetUser(ctx context.Context, id string) (*entities.User, error)
}

// CreateTodoRequest carries the client-supplied fields for a new todo.
// The owner always comes from the authenticated session, never the body.
type CreateTodoRequest struct {
	Text          string          `json:"text" validate:"required"`
	Priority      entities.Level  `json:"priority" validate:"omitempty,oneof=high medium low"`
	Urgency       entities.Level  `json:"urgency" validate:"omitempty,oneof=high medium low"`
	EstimatedTime *int            `json:"estimated_time" validate:"omitempty,min=0"`
	ActualTime    *int            `json:"actual_time" validate:"omitempty,min=0"`
}

// UpdateTodoRequest carries a partial set of mutable fields.
// Nil pointers mean "leave unchanged".
type UpdateTodoRequest struct {
	Text          *string         `json:"text" validate:"omitempty,min=1"`
	Completed     *bool           `json:"completed"`
	Priority      *entities.Level `json:"priority" validate:"omitempty,oneof=high medium low"`
	Urgency       *entities.Level `json:"urgency" validate:"omitempty,oneof=high medium low"`
	EstimatedTime *int            `json:"estimated_time" validate:"omitempty,min=0"`
	ActualTime    *int            `json:"actual_time" validate:"omitempty,min=0"`
}

// IdentityProfile is the provider-supplied profile delivered on the
// authentication callback.
type IdentityProfile struct {
	ID                string  `json:"id" validate:"required"`
	Email             string  `json:"email" validate:"required,email"`
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	EmailVerified     bool    `json:"email_verified"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	OrganizationID    *string `json:"organization_id"`
}
