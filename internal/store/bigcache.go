package store

import (
	"context"
	"time"

	"github.com/allegro/bigcache/v3"
)

// MemoryStore keeps entries in-process with a TTL. It is the default
// backend for single-instance deployments; entries do not survive a
// restart, which is fine for stale-while-revalidate snapshot caching.
type MemoryStore struct {
	cache *bigcache.BigCache
}

func NewMemoryStore(ttl time.Duration) (*MemoryStore, error) {
	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	val, err := s.cache.Get(key)
	if err == bigcache.ErrEntryNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	return s.cache.Set(key, value)
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	err := s.cache.Delete(key)
	if err == bigcache.ErrEntryNotFound {
		return nil
	}
	return err
}

func (s *MemoryStore) Close() error {
	return s.cache.Close()
}
