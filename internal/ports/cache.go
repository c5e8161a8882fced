package ports

import (
	"context"
	"time"
)

// Cache is a generic key-value capability used to memoize slow external
// lookups. Adapters may be backed by SQLite or other stores.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
