package providers

import (
	"context"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// SetIfAbsent stores a value only when the key is new; reports whether
	// the write happened. Used for ingestion idempotency keys.
	SetIfAbsent(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error)
}
