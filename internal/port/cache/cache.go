package cache

import (
	"context"
	"time"
)

// CacheRepository is the query-cache and preferences store. A ttl of zero means
// the key does not expire (used for preferences).
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes every key under the prefix. Moderation actions use
	// it for coarse invalidation of all cached list and navigation queries.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

const ErrNotFound = CacheError("key not found in cache")
