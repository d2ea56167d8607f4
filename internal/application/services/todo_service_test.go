package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/todoflow/core/internal/domain/entities"
	"github.com/todoflow/core/internal/infrastructure/logger"
	"github.com/todoflow/core/internal/ports"
)

type fakeTodoRepo struct {
	todos  map[string]*entities.Todo
	nextID int
	err    error
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[string]*entities.Todo)}
}

func (r *fakeTodoRepo) ListByUser(_ context.Context, userID string) ([]*entities.Todo, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*entities.Todo
	for _, t := range r.todos {
		if t.UserID == userID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTodoRepo) GetByID(_ context.Context, id, userID string) (*entities.Todo, error) {
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, entities.ErrTodoNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTodoRepo) Create(_ context.Context, todo *entities.Todo) error {
	if r.err != nil {
		return r.err
	}
	if todo.ID == "" {
		r.nextID++
		todo.ID = string(rune('a' + r.nextID))
	}
	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	copied := *todo
	r.todos[todo.ID] = &copied
	return nil
}

func (r *fakeTodoRepo) Update(_ context.Context, todo *entities.Todo) error {
	if r.err != nil {
		return r.err
	}
	existing, ok := r.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return entities.ErrTodoNotFound
	}
	todo.UpdatedAt = time.Now()
	copied := *todo
	r.todos[todo.ID] = &copied
	return nil
}

func (r *fakeTodoRepo) Delete(_ context.Context, id, userID string) error {
	if r.err != nil {
		return r.err
	}
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return entities.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *fakeTodoRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var deleted int64
	for id, t := range r.todos {
		if t.CreatedAt.Before(cutoff) {
			delete(r.todos, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeCache struct {
	lists       map[string][]*entities.Todo
	invalidated []string
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{lists: make(map[string][]*entities.Todo)}
}

func (c *fakeCache) GetList(_ context.Context, userID string) ([]*entities.Todo, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	todos, ok := c.lists[userID]
	return todos, ok, nil
}

func (c *fakeCache) SetList(_ context.Context, userID string, todos []*entities.Todo) error {
	c.lists[userID] = todos
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID string) error {
	delete(c.lists, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func newTestTodoService(repo ports.TodoRepository, cache ports.ListCache) *TodoService {
	return NewTodoService(repo, cache, logger.NewNop())
}

func TestTodoServiceCreate(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := newTestTodoService(repo, nil)

	todo, err := svc.Create(context.Background(), "user_1", ports.CreateTodoRequest{
		Text: "  Write report  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if todo.Text != "Write report" {
		t.Errorf("expected trimmed text, got %q", todo.Text)
	}
	if todo.Priority != entities.LevelMedium || todo.Urgency != entities.LevelMedium {
		t.Errorf("expected medium defaults, got priority=%q urgency=%q", todo.Priority, todo.Urgency)
	}
	if todo.UserID != "user_1" {
		t.Errorf("expected owner user_1, got %q", todo.UserID)
	}
	if todo.ID == "" {
		t.Error("expected assigned id")
	}
}

func TestTodoServiceCreateEmptyText(t *testing.T) {
	svc := newTestTodoService(newFakeTodoRepo(), nil)

	_, err := svc.Create(context.Background(), "user_1", ports.CreateTodoRequest{Text: "   "})
	if !errors.Is(err, entities.ErrEmptyText) {
		t.Errorf("Create() error = %v, want ErrEmptyText", err)
	}
}

func TestTodoServiceListIsolation(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := newTestTodoService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{Text: "mine"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "user_2", ports.CreateTodoRequest{Text: "theirs"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	todos, err := svc.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(todos) != 1 || todos[0].Text != "mine" {
		t.Errorf("expected only user_1's todo, got %+v", todos)
	}
}

func TestTodoServiceUpdatePartial(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := newTestTodoService(repo, nil)
	ctx := context.Background()

	estimated := 45
	created, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{
		Text:          "Plan sprint",
		Priority:      entities.LevelHigh,
		EstimatedTime: &estimated,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	completed := true
	updated, err := svc.Update(ctx, "user_1", created.ID, ports.UpdateTodoRequest{
		Completed: &completed,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if !updated.Completed {
		t.Error("expected completed to be set")
	}
	if updated.Text != "Plan sprint" {
		t.Errorf("untouched field changed: text = %q", updated.Text)
	}
	if updated.Priority != entities.LevelHigh {
		t.Errorf("untouched field changed: priority = %q", updated.Priority)
	}
	if updated.EstimatedTime == nil || *updated.EstimatedTime != 45 {
		t.Errorf("untouched field changed: estimated_time = %v", updated.EstimatedTime)
	}
}

func TestTodoServiceUpdateWrongOwner(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := newTestTodoService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{Text: "secret"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	text := "stolen"
	_, err = svc.Update(ctx, "user_2", created.ID, ports.UpdateTodoRequest{Text: &text})
	if !errors.Is(err, entities.ErrTodoNotFound) {
		t.Errorf("Update() error = %v, want ErrTodoNotFound", err)
	}
}

func TestTodoServiceDelete(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := newTestTodoService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{Text: "temp"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, "user_2", created.ID); !errors.Is(err, entities.ErrTodoNotFound) {
		t.Errorf("Delete() by wrong owner = %v, want ErrTodoNotFound", err)
	}
	if err := svc.Delete(ctx, "user_1", created.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, "user_1", created.ID); !errors.Is(err, entities.ErrTodoNotFound) {
		t.Errorf("Delete() of removed todo = %v, want ErrTodoNotFound", err)
	}
}

func TestTodoServiceDeleteOld(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := newTestTodoService(repo, nil)
	ctx := context.Background()

	stale, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{Text: "stale"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	repo.todos[stale.ID].CreatedAt = time.Now().Add(-48 * time.Hour)

	if _, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{Text: "fresh"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deleted, err := svc.DeleteOld(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteOld() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteOld() = %d, want 1", deleted)
	}

	todos, err := svc.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(todos) != 1 || todos[0].Text != "fresh" {
		t.Errorf("expected only the fresh todo to survive, got %+v", todos)
	}
}

func TestTodoServiceCacheReadThrough(t *testing.T) {
	repo := newFakeTodoRepo()
	cache := newFakeCache()
	svc := newTestTodoService(repo, cache)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{Text: "cached"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// First list fills the cache, second list must not touch the repo.
	if _, err := svc.List(ctx, "user_1"); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	repo.err = errors.New("database down")
	todos, err := svc.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("List() from cache error = %v", err)
	}
	if len(todos) != 1 || todos[0].Text != "cached" {
		t.Errorf("expected cached list, got %+v", todos)
	}
}

func TestTodoServiceCacheInvalidation(t *testing.T) {
	repo := newFakeTodoRepo()
	cache := newFakeCache()
	svc := newTestTodoService(repo, cache)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{Text: "first"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(cache.invalidated) != 1 {
		t.Fatalf("expected invalidation after create, got %v", cache.invalidated)
	}

	completed := true
	if _, err := svc.Update(ctx, "user_1", created.ID, ports.UpdateTodoRequest{Completed: &completed}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := svc.Delete(ctx, "user_1", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(cache.invalidated) != 3 {
		t.Errorf("expected invalidation after every mutation, got %v", cache.invalidated)
	}
}

func TestTodoServiceCacheFailureFallsBack(t *testing.T) {
	repo := newFakeTodoRepo()
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	svc := newTestTodoService(repo, cache)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user_1", ports.CreateTodoRequest{Text: "resilient"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	todos, err := svc.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(todos) != 1 {
		t.Errorf("expected the list despite cache failure, got %+v", todos)
	}
}
