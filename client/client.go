// Package client is the TodoFlow client SDK: a thin HTTP API wrapper, a
// reactive local store with optimistic mutations, and a derived
// filtered/sorted view over the store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/todoflow/core/internal/domain/entities"
)

// APIError is a typed error decoded from the server's {error, code}
// envelope.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// CreateRequest carries the fields for a new todo.
type CreateRequest struct {
	Text          string          `json:"text"`
	Priority      entities.Level  `json:"priority,omitempty"`
	Urgency       entities.Level  `json:"urgency,omitempty"`
	EstimatedTime *int            `json:"estimated_time,omitempty"`
	ActualTime    *int            `json:"actual_time,omitempty"`
}

// UpdateRequest carries a partial set of mutable fields. Only non-nil
// fields are sent, so the server merges exactly what changed.
type UpdateRequest struct {
	Text          *string         `json:"text,omitempty"`
	Completed     *bool           `json:"completed,omitempty"`
	Priority      *entities.Level `json:"priority,omitempty"`
	Urgency       *entities.Level `json:"urgency,omitempty"`
	EstimatedTime *int            `json:"estimated_time,omitempty"`
	ActualTime    *int            `json:"actual_time,omitempty"`
}

// SweepResult reports the outcome of a retention sweep.
type SweepResult struct {
	DeletedCount int64 `json:"deletedCount"`
	Success      bool  `json:"success"`
}

// Client talks to the TodoFlow API on behalf of one authenticated
// session.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates an API client for the given base URL and session token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// List fetches all todos owned by the session user.
func (c *Client) List(ctx context.Context) ([]entities.Todo, error) {
	var todos []entities.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Create creates a todo and returns the canonical server record.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*entities.Todo, error) {
	var todo entities.Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Update sends a partial update and returns the canonical server record.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*entities.Todo, error) {
	var todo entities.Todo
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+url.PathEscape(id), req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Delete removes a todo.
func (c *Client) Delete(ctx context.Context, id string) error {
	var ack struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, &ack)
}

// DeleteOld triggers the server-side retention sweep.
func (c *Client) DeleteOld(ctx context.Context) (*SweepResult, error) {
	var result SweepResult
	if err := c.do(ctx, http.MethodPost, "/api/todos/batch/delete-old", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Code = "INTERNAL_ERROR"
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}

	return nil
}
