package cache

import (
	"time"
	"traveltime-tiles/internal/platform/obs"
	"traveltime-tiles/internal/ports"
)

// DefaultTTL is how long entries live in the shared store.
const DefaultTTL = 7 * 24 * time.Hour

// Wrapper decorates providers with caching. Callers cannot tell whether
// caching is active: both implementations return the same interfaces.
type Wrapper interface {
	WrapDurationProvider(prefix string, p ports.DurationProvider) ports.DurationProvider
	WrapLocationSearch(s ports.LocationSearcher) ports.LocationSearcher
}

// Option configures a StoreWrapper.
type Option func(*StoreWrapper)

func WithTTL(ttl time.Duration) Option {
	return func(w *StoreWrapper) { w.ttl = ttl }
}

// WithClock sets the time source used for x-cache-computed-at.
func WithClock(now func() time.Time) Option {
	return func(w *StoreWrapper) { w.now = now }
}

func WithMetrics(m *obs.CacheMetrics) Option {
	return func(w *StoreWrapper) { w.metrics = m }
}

// NewWrapper returns a NoopWrapper when store is nil and a StoreWrapper
// otherwise.
func NewWrapper(store ports.KeyValueStore, opts ...Option) Wrapper {
	if store == nil {
		return NoopWrapper{}
	}
	return NewStoreWrapper(store, opts...)
}

// NoopWrapper hands providers back unchanged.
type NoopWrapper struct{}

func (NoopWrapper) WrapDurationProvider(_ string, p ports.DurationProvider) ports.DurationProvider {
	return p
}

func (NoopWrapper) WrapLocationSearch(s ports.LocationSearcher) ports.LocationSearcher {
	return s
}

// StoreWrapper caches through a shared KeyValueStore.
type StoreWrapper struct {
	store   ports.KeyValueStore
	ttl     time.Duration
	now     func() time.Time
	metrics *obs.CacheMetrics
}

func NewStoreWrapper(store ports.KeyValueStore, opts ...Option) *StoreWrapper {
	w := &StoreWrapper{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *StoreWrapper) WrapDurationProvider(prefix string, p ports.DurationProvider) ports.DurationProvider {
	return &CachedDurationProvider{
		prefix:  prefix,
		inner:   p,
		store:   w.store,
		ttl:     w.ttl,
		now:     w.now,
		metrics: w.metrics,
	}
}

func (w *StoreWrapper) WrapLocationSearch(s ports.LocationSearcher) ports.LocationSearcher {
	return &CachedLocationSearcher{
		inner:   s,
		store:   w.store,
		ttl:     w.ttl,
		metrics: w.metrics,
	}
}
