package entities

import (
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrTodoNotFound  = errors.New("todo not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrEmptyText     = errors.New("todo text must not be empty")
	ErrInvalidLevel  = errors.New("invalid priority or urgency level")
	ErrNegativeTime  = errors.New("time estimate must be 0 or greater")
	ErrMissingID     = errors.New("todo is missing an id")
)

// Level is the shared value scale for priority and urgency.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

func (l Level) IsValid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow:
		return true
	default:
		return false
	}
}

// Rank orders levels for sorting: low < medium < high.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	default:
		return 1
	}
}

// Todo represents a single todo item owned by a user
type Todo struct {
	ID            string    `json:"id" db:"id"`
	Text          string    `json:"text" db:"text"`
	Completed     bool      `json:"completed" db:"completed"`
	Priority      Level     `json:"priority" db:"priority"`
	Urgency       Level     `json:"urgency" db:"urgency"`
	EstimatedTime *int      `json:"estimated_time" db:"estimated_time"`
	ActualTime    *int      `json:"actual_time" db:"actual_time"`
	UserID        string    `json:"user_id" db:"user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// User represents an authenticated user, mirrored from the identity provider
type User struct {
	ID                string    `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	FirstName         *string   `json:"first_name" db:"first_name"`
	LastName          *string   `json:"last_name" db:"last_name"`
	EmailVerified     bool      `json:"email_verified" db:"email_verified"`
	ProfilePictureURL *string   `json:"profile_picture_url" db:"profile_picture_url"`
	OrganizationID    *string   `json:"organization_id" db:"organization_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Normalize trims the todo text and fills level defaults.
func (t *Todo) Normalize() {
	t.Text = strings.TrimSpace(t.Text)
	if t.Priority == "" {
		t.Priority = LevelMedium
	}
	if t.Urgency == "" {
		t.Urgency = LevelMedium
	}
}

// Validate checks the todo's invariants after normalization.
func (t *Todo) Validate() error {
	if t.Text == "" {
		return ErrEmptyText
	}
	if !t.Priority.IsValid() || !t.Urgency.IsValid() {
		return ErrInvalidLevel
	}
	if t.EstimatedTime != nil && *t.EstimatedTime < 0 {
		return ErrNegativeTime
	}
	if t.ActualTime != nil && *t.ActualTime < 0 {
		return ErrNegativeTime
	}
	return nil
}

// OwnedBy reports whether the todo belongs to the given user.
func (t *Todo) OwnedBy(userID string) bool {
	return t.UserID == userID
}

func (u *User) FullName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return strings.Join(parts, " ")
}
