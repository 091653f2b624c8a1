package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcachedStore is a KeyValueStore backed by one or more memcached servers.
// The memcache client has no context support; a cancelled context is
// checked before each call and the client's own timeout bounds the rest.
type MemcachedStore struct {
	client *memcache.Client
	now    func() time.Time
}

// Memcached reads expirations above 30 days as absolute unix times.
const maxRelativeExpiration = 30 * 24 * time.Hour

// NewMemcachedStore accepts a comma separated server list. Entries may
// carry a memcached:// scheme.
func NewMemcachedStore(servers string, timeout time.Duration) (*MemcachedStore, error) {
	addrs := make([]string, 0, 2)
	for _, s := range strings.Split(servers, ",") {
		s = strings.TrimPrefix(strings.TrimSpace(s), "memcached://")
		if s != "" {
			addrs = append(addrs, s)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("memcached store: no servers configured")
	}

	client := memcache.New(addrs...)
	if timeout > 0 {
		client.Timeout = timeout
	}

	return &MemcachedStore{client: client, now: time.Now}, nil
}

func (s *MemcachedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	item, err := s.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("memcached get %q: %w", key, err)
	}
	return item.Value, true, nil
}

func (s *MemcachedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	item := &memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: s.expiration(ttl),
	}
	if err := s.client.Set(item); err != nil {
		return fmt.Errorf("memcached set %q: %w", key, err)
	}
	return nil
}

// expiration converts ttl to the memcached exptime field. Zero means no
// expiry, so sub-second TTLs round up to one second.
func (s *MemcachedStore) expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > maxRelativeExpiration {
		return int32(s.now().Add(ttl).Unix())
	}
	return int32((ttl + time.Second - 1) / time.Second)
}

// Close is a no-op; the memcache client reaps its idle connections itself.
func (s *MemcachedStore) Close() error { return nil }
