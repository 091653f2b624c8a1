package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
)

const DefaultMemoryStoreSize = 100_000

// MemoryStore is an in-process LRU KeyValueStore. It is not shared between
// replicas; use it for single-instance deployments and tests.
type MemoryStore struct {
	cache gcache.Cache
}

type MemoryStoreOption func(*gcache.CacheBuilder)

// WithClock replaces the cache clock, for tests.
func WithClock(clock gcache.Clock) MemoryStoreOption {
	return func(b *gcache.CacheBuilder) { b.Clock(clock) }
}

func NewMemoryStore(size int, opts ...MemoryStoreOption) *MemoryStore {
	if size <= 0 {
		size = DefaultMemoryStoreSize
	}

	b := gcache.New(size).LRU()
	for _, o := range opts {
		o(b)
	}
	return &MemoryStore{cache: b.Build()}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := s.cache.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("memory get %q: %w", key, err)
	}

	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("memory get %q: unexpected value type %T", key, v)
	}
	return append([]byte(nil), b...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.cache.SetWithExpire(key, append([]byte(nil), value...), ttl); err != nil {
		return fmt.Errorf("memory set %q: %w", key, err)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}
