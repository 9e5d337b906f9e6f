package cache

import (
	"context"
	"io"
)

// Store is a small string key/value store. Keys are namespaced by the
// implementation's prefix.
type Store interface {
	io.Closer
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
