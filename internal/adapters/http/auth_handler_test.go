package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/todoflow/core/internal/application/services"
	"github.com/todoflow/core/internal/domain/entities"
	"github.com/todoflow/core/internal/infrastructure/logger"
)

type memoryUserRepo struct {
	users   map[string]*entities.User
	upserts int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*entities.User)}
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*entities.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) Upsert(_ context.Context, user *entities.User) error {
	r.upserts++
	now := time.Now()
	if existing, ok := r.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func newTestAuthHandler(repo *memoryUserRepo) *AuthHandler {
	nop := logger.NewNop()
	return NewAuthHandler(services.NewUserService(repo, nop), nop)
}

func TestAuthHandlerCallbackCreatesUser(t *testing.T) {
	repo := newMemoryUserRepo()
	h := newTestAuthHandler(repo)

	body := `{"id":"user_1","email":"ada@example.com","first_name":"Ada","email_verified":true}`
	c, rec := newTestContext(http.MethodPost, "/api/auth/callback", body)

	if err := h.Callback(c); err != nil {
		t.Fatalf("Callback() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var user entities.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if user.ID != "user_1" || user.Email != "ada@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if _, ok := repo.users["user_1"]; !ok {
		t.Error("user row not created")
	}
}

func TestAuthHandlerCallbackRefreshesUser(t *testing.T) {
	repo := newMemoryUserRepo()
	h := newTestAuthHandler(repo)

	first := `{"id":"user_1","email":"old@example.com"}`
	c, _ := newTestContext(http.MethodPost, "/api/auth/callback", first)
	if err := h.Callback(c); err != nil {
		t.Fatalf("Callback() error = %v", err)
	}

	second := `{"id":"user_1","email":"new@example.com","email_verified":true}`
	c, _ = newTestContext(http.MethodPost, "/api/auth/callback", second)
	if err := h.Callback(c); err != nil {
		t.Fatalf("Callback() error = %v", err)
	}

	if repo.upserts != 2 {
		t.Errorf("upserts = %d, want 2", repo.upserts)
	}
	if got := repo.users["user_1"].Email; got != "new@example.com" {
		t.Errorf("email after refresh = %q, want new@example.com", got)
	}
}

func TestAuthHandlerCallbackValidation(t *testing.T) {
	h := newTestAuthHandler(newMemoryUserRepo())

	tests := []struct {
		name string
		body string
	}{
		{"missing id", `{"email":"ada@example.com"}`},
		{"missing email", `{"id":"user_1"}`},
		{"malformed email", `{"id":"user_1","email":"not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/api/auth/callback", tt.body)

			err := h.Callback(c)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Callback() error = %v, want *APIError", err)
			}
			if apiErr.Status != http.StatusBadRequest || apiErr.Code != CodeValidationError {
				t.Errorf("got status=%d code=%q, want 400 %s", apiErr.Status, apiErr.Code, CodeValidationError)
			}
		})
	}
}

func TestAuthHandlerMe(t *testing.T) {
	h := newTestAuthHandler(newMemoryUserRepo())

	c, rec := newTestContext(http.MethodGet, "/api/me", "")
	SetCurrentUser(c, sessionUser("user_1"))

	if err := h.Me(c); err != nil {
		t.Fatalf("Me() error = %v", err)
	}

	var user entities.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if user.ID != "user_1" {
		t.Errorf("user id = %q, want user_1", user.ID)
	}
}
