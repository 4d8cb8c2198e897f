// Package store provides the key/value persistence port used for snapshot
// caching. Business logic never touches a concrete backend: callers hold
// the Store interface and the backend is chosen once, in main, from config.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the key has no value
var ErrNotFound = errors.New("store: key not found")

// Store is a minimal load/save capability. Values are opaque bytes;
// callers own serialization.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
