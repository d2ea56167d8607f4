package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/todoflow/core/internal/domain/entities"
	"github.com/todoflow/core/internal/infrastructure/config"
)

// TodoListCache caches each user's full todo list in Redis. Entries are
// written on list reads and dropped on any mutation for that user, so a
// stale entry can only survive for the configured TTL.
type TodoListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(cfg config.RedisConfig) (*TodoListCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &TodoListCache{client: client, ttl: cfg.TTL}, nil
}

// NewWithClient wraps an existing client, used by tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *TodoListCache {
	return &TodoListCache{client: client, ttl: ttl}
}

func listKey(userID string) string {
	return "todos:list:" + userID
}

// GetList returns the cached list for a user. The second return value
// reports whether there was a cache hit.
func (c *TodoListCache) GetList(ctx context.Context, userID string) ([]*entities.Todo, bool, error) {
	data, err := c.client.Get(ctx, listKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached list: %w", err)
	}

	var todos []*entities.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, false, fmt.Errorf("decode cached list: %w", err)
	}

	return todos, true, nil
}

// SetList stores a user's todo list with the configured TTL.
func (c *TodoListCache) SetList(ctx context.Context, userID string, todos []*entities.Todo) error {
	data, err := json.Marshal(todos)
	if err != nil {
		return fmt.Errorf("encode list for cache: %w", err)
	}

	if err := c.client.Set(ctx, listKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached list: %w", err)
	}

	return nil
}

// Invalidate drops a user's cached list.
func (c *TodoListCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, listKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached list: %w", err)
	}
	return nil
}

// Ping checks the Redis connection for health reporting.
func (c *TodoListCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *TodoListCache) Close() error {
	return c.client.Close()
}
