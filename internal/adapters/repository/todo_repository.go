package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/todoflow/core/internal/domain/entities"
	"github.com/todoflow/core/internal/ports"
)

// TodoRepositoryImpl implements the TodoRepository interface
type TodoRepositoryImpl struct {
	db *sqlx.DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *sqlx.DB) ports.TodoRepository {
	return &TodoRepositoryImpl{db: db}
}

func (r *TodoRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*entities.Todo, error) {
	query := `
		SELECT id, text, completed, priority, urgency, estimated_time, actual_time,
			user_id, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC`

	todos := []*entities.Todo{}
	err := r.db.SelectContext(ctx, &todos, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return todos, nil
}

func (r *TodoRepositoryImpl) GetByID(ctx context.Context, id, userID string) (*entities.Todo, error) {
	query := `
		SELECT id, text, completed, priority, urgency, estimated_time, actual_time,
			user_id, created_at, updated_at
		FROM todos
		WHERE id = $1 AND user_id = $2`

	var todo entities.Todo
	err := r.db.GetContext(ctx, &todo, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo by id: %w", err)
	}

	return &todo, nil
}

func (r *TodoRepositoryImpl) Create(ctx context.Context, todo *entities.Todo) error {
	query := `
		INSERT INTO todos (id, text, completed, priority, urgency, estimated_time, actual_time, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}

	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.Text, todo.Completed, todo.Priority, todo.Urgency,
		todo.EstimatedTime, todo.ActualTime, todo.UserID,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}

	return nil
}

func (r *TodoRepositoryImpl) Update(ctx context.Context, todo *entities.Todo) error {
	query := `
		UPDATE todos
		SET text = $3, completed = $4, priority = $5, urgency = $6,
			estimated_time = $7, actual_time = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.UserID, todo.Text, todo.Completed, todo.Priority,
		todo.Urgency, todo.EstimatedTime, todo.ActualTime,
	).Scan(&todo.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrTodoNotFound
		}
		return fmt.Errorf("update todo: %w", err)
	}

	return nil
}

func (r *TodoRepositoryImpl) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTodoNotFound
	}

	return nil
}

func (r *TodoRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM todos WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old todos: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return deleted, nil
}
