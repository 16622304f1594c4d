package kv

import "context"

// Store is a durable single-value-per-key store.
// Writes are last-writer-wins; there is no locking or transaction across keys.
type Store interface {
	// Get returns the value under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
