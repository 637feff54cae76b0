// Package metadata is the client's durable key/value table. It backs the
// persisted token, the cached user identifier and the offline QR payload.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Keys lists stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
}
