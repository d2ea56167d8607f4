package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/todoflow/core/client/search"
	"github.com/todoflow/core/internal/domain/entities"
)

// fakeAPI is a stateful in-memory stand-in for the todo service.
type fakeAPI struct {
	mu    sync.Mutex
	todos map[string]entities.Todo
	seq   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{todos: make(map[string]entities.Todo)}
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		id := strings.TrimPrefix(r.URL.Path, "/api/todos/")

		switch {
		case r.Method == http.MethodGet:
			list := make([]entities.Todo, 0, len(f.todos))
			for _, t := range f.todos {
				list = append(list, t)
			}
			writeJSON(w, http.StatusOK, list)

		case r.Method == http.MethodPost:
			var req CreateRequest
			json.NewDecoder(r.Body).Decode(&req)

			f.seq++
			todo := entities.Todo{
				ID:        "srv_" + string(rune('0'+f.seq)),
				Text:      strings.TrimSpace(req.Text),
				Priority:  req.Priority,
				Urgency:   req.Urgency,
				UserID:    "user_1",
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if todo.Priority == "" {
				todo.Priority = entities.LevelMedium
			}
			if todo.Urgency == "" {
				todo.Urgency = entities.LevelMedium
			}
			todo.EstimatedTime = req.EstimatedTime
			todo.ActualTime = req.ActualTime
			f.todos[todo.ID] = todo
			writeJSON(w, http.StatusCreated, todo)

		case r.Method == http.MethodPatch:
			todo, ok := f.todos[id]
			if !ok {
				writeEnvelope(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
				return
			}
			var req UpdateRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Text != nil {
				todo.Text = *req.Text
			}
			if req.Completed != nil {
				todo.Completed = *req.Completed
			}
			if req.Priority != nil {
				todo.Priority = *req.Priority
			}
			if req.Urgency != nil {
				todo.Urgency = *req.Urgency
			}
			if req.EstimatedTime != nil {
				todo.EstimatedTime = req.EstimatedTime
			}
			if req.ActualTime != nil {
				todo.ActualTime = req.ActualTime
			}
			todo.UpdatedAt = time.Now()
			f.todos[id] = todo
			writeJSON(w, http.StatusOK, todo)

		case r.Method == http.MethodDelete:
			if _, ok := f.todos[id]; !ok {
				writeEnvelope(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
				return
			}
			delete(f.todos, id)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		}
	})
}

func TestTodoLifecycleAcrossViews(t *testing.T) {
	ts := httptest.NewServer(newFakeAPI().handler())
	defer ts.Close()

	store := loadedStore(t, ts)
	ctx := context.Background()

	active := false
	done := true
	activeView := NewView(store, search.Params{Completed: &active})
	completedView := NewView(store, search.Params{Completed: &done})
	defer activeView.Close()
	defer completedView.Close()

	// Create: appears in the active view with defaults applied.
	m, err := store.Insert(entities.Todo{Text: "Buy milk"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := m.Wait(ctx); err != nil {
		t.Fatalf("insert Wait() error = %v", err)
	}

	got := activeView.Todos()
	if len(got) != 1 || got[0].Text != "Buy milk" {
		t.Fatalf("active view = %+v, want [Buy milk]", got)
	}
	if got[0].Completed || got[0].Priority != entities.LevelMedium || got[0].Urgency != entities.LevelMedium {
		t.Errorf("defaults not applied: %+v", got[0])
	}
	if len(completedView.Todos()) != 0 {
		t.Error("new todo leaked into the completed view")
	}

	id := m.TodoID()

	// Complete it: moves from the active view to the completed view.
	m, err = store.Update(id, func(todo *entities.Todo) {
		todo.Completed = true
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := m.Wait(ctx); err != nil {
		t.Fatalf("update Wait() error = %v", err)
	}

	if len(activeView.Todos()) != 0 {
		t.Error("completed todo still in the active view")
	}
	if got := completedView.Todos(); len(got) != 1 || !got[0].Completed {
		t.Errorf("completed view = %+v, want the completed todo", got)
	}

	// Delete: gone from every view.
	m, err = store.Delete(id)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := m.Wait(ctx); err != nil {
		t.Fatalf("delete Wait() error = %v", err)
	}

	if len(activeView.Todos()) != 0 || len(completedView.Todos()) != 0 || store.Len() != 0 {
		t.Error("deleted todo still visible")
	}
}
