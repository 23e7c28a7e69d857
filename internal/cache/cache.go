package cache

import (
	"context"
	"time"
)

// Cache is the key-value sidecar used by the cached repositories. A miss is
// reported through the found flag, never as an error; the cache is not a
// consistency boundary and callers must treat every value as reconstructable.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// ClearPattern removes every key matching a glob-style pattern such as
	// "user:list:*". Best effort: it may race with concurrent Sets.
	ClearPattern(ctx context.Context, pattern string) error
}
