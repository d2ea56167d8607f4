package ports

import (
	"context"
	"time"

	"github.com/todoflow/core/internal/domain/entities"
)

// TodoRepository defines the interface for todo data operations.
// Every read and write is scoped to an owning user except the
// retention sweep, which crosses users.
type TodoRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*entities.Todo, error)
	GetByID(ctx context.Context, id, userID string) (*entities.Todo, error)
	Create(ctx context.Context, todo *entities.Todo) error
	Update(ctx context.Context, todo *entities.Todo) error
	Delete(ctx context.Context, id, userID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entities.User, error)
	Upsert(ctx context.Context, user *entities.User) error
}

// ListCache caches a user's todo list between mutations
type ListCache interface {
	GetList(ctx context.Context, userID string) ([]*entities.Todo, bool, error)
	SetList(ctx context.Context, userID string, todos []*entities.Todo) error
	Invalidate(ctx context.Context, userID string) error
}
