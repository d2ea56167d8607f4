package services

import (
	"context"
	"fmt"
	"time"

	"github.com/todoflow/core/internal/domain/entities"
	"github.com/todoflow/core/internal/infrastructure/logger"
	"github.com/todoflow/core/internal/ports"
)

// TodoService handles todo operations scoped to the calling user.
// The owner id always comes from the authenticated session; a client
// can never write another user's records.
type TodoService struct {
	todoRepo ports.TodoRepository
	cache    ports.ListCache
	logger   *logger.Logger
}

// NewTodoService creates a new todo service. cache may be nil, in which
// case every list goes to the database.
func NewTodoService(todoRepo ports.TodoRepository, cache ports.ListCache, logger *logger.Logger) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
		cache:    cache,
		logger:   logger,
	}
}

// List returns all todos owned by the user.
func (s *TodoService) List(ctx context.Context, userID string) ([]*entities.Todo, error) {
	if s.cache != nil {
		todos, hit, err := s.cache.GetList(ctx, userID)
		if err != nil {
			// A broken cache must not take down reads.
			s.logger.Warnw("List cache read failed", "error", err, "user_id", userID)
		} else if hit {
			return todos, nil
		}
	}

	todos, err := s.todoRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetList(ctx, userID, todos); err != nil {
			s.logger.Warnw("List cache write failed", "error", err, "user_id", userID)
		}
	}

	return todos, nil
}

// Create creates a new todo owned by the user.
func (s *TodoService) Create(ctx context.Context, userID string, req ports.CreateTodoRequest) (*entities.Todo, error) {
	todo := &entities.Todo{
		Text:          req.Text,
		Priority:      req.Priority,
		Urgency:       req.Urgency,
		EstimatedTime: req.EstimatedTime,
		ActualTime:    req.ActualTime,
		UserID:        userID,
	}

	todo.Normalize()
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.invalidate(ctx, userID)
	s.logger.Infow("Todo created", "todo_id", todo.ID, "user_id", userID)

	return todo, nil
}

// Update merges the supplied fields into the user's todo. The existence
// and ownership check happens here, immediately before the write.
func (s *TodoService) Update(ctx context.Context, userID, id string, req ports.UpdateTodoRequest) (*entities.Todo, error) {
	existing, err := s.todoRepo.GetByID(ctx, id, userID)
	if err != nil {
		if err == entities.ErrTodoNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load todo: %w", err)
	}

	if req.Text != nil {
		existing.Text = *req.Text
	}
	if req.Completed != nil {
		existing.Completed = *req.Completed
	}
	if req.Priority != nil {
		existing.Priority = *req.Priority
	}
	if req.Urgency != nil {
		existing.Urgency = *req.Urgency
	}
	if req.EstimatedTime != nil {
		existing.EstimatedTime = req.EstimatedTime
	}
	if req.ActualTime != nil {
		existing.ActualTime = req.ActualTime
	}

	existing.Normalize()
	if err := existing.Validate(); err != nil {
		return nil, err
	}

	if err := s.todoRepo.Update(ctx, existing); err != nil {
		if err == entities.ErrTodoNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.invalidate(ctx, userID)
	s.logger.Infow("Todo updated", "todo_id", id, "user_id", userID)

	return existing, nil
}

// Delete removes the user's todo.
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	if err := s.todoRepo.Delete(ctx, id, userID); err != nil {
		if err == entities.ErrTodoNotFound {
			return err
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	s.invalidate(ctx, userID)
	s.logger.Infow("Todo deleted", "todo_id", id, "user_id", userID)

	return nil
}

// DeleteOld removes todos created before now minus olderThan, across all
// users. Callers decide the window; the service does not hard-code one.
func (s *TodoService) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	deleted, err := s.todoRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old todos: %w", err)
	}

	if deleted > 0 {
		s.logger.Infow("Old todos deleted", "count", deleted, "cutoff", cutoff)
	}

	return deleted, nil
}

func (s *TodoService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warnw("List cache invalidation failed", "error", err, "user_id", userID)
	}
}
