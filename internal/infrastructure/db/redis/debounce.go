package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Debouncer grants one acquisition per key per window backed by Redis.
// Key format: debounce:<key>
type Debouncer struct {
	client *redis.Client
}

// NewDebouncer creates a Debouncer wrapping the given Redis client.
func NewDebouncer(client *redis.Client) *Debouncer {
	return &Debouncer{client: client}
}

// Acquire reports whether the caller is the first to claim key within window.
func (d *Debouncer) Acquire(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, "debounce:"+key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("debounce acquire: %w", err)
	}
	return ok, nil
}
