package cache

import (
	"context"
	"time"
)

// Cache is an ephemeral key-value store with TTL. It backs the sync
// status blackboard and the task list read-through cache.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
