package interfaces

import "context"

// CacheStore is a key-value store for serialized status records.
// Get returns types.ErrCacheMiss when no value exists for the key.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
