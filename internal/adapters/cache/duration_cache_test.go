package cache

import (
	"context"
	"errors"
	"testing"
	"time"
	"traveltime-tiles/internal/adapters/store"
	"traveltime-tiles/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	origin      = domain.GeoCoordinate{Lat: 51.5, Lng: 7.0}
	destination = domain.GeoCoordinate{Lat: 51.45, Lng: 7.01}
)

func wrapWith(kv *fakeStore, p *countingProvider) *CachedDurationProvider {
	w := NewStoreWrapper(kv, WithClock(func() time.Time { return fixedNow }))
	return w.WrapDurationProvider("vrr", p).(*CachedDurationProvider)
}

func TestCachedLookupComputesOnceThenHits(t *testing.T) {
	ctx := context.Background()
	kv := newFakeStore()
	p := &countingProvider{result: domain.NewDurationResult(25*time.Minute, "vrr")}
	cached := wrapWith(kv, p)

	first, err := cached.Lookup(ctx, origin, destination)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 25*time.Minute, *first.Duration)
	assert.Equal(t, "true", first.Tags[domain.TagCacheComputed])
	assert.Equal(t, "vrr", first.Tags[domain.TagSource])
	assert.Equal(t, "2026-01-05T09:00:00Z", first.Tags[domain.TagCacheComputedAt])
	assert.NotContains(t, first.Tags, domain.TagCacheHit)

	second, err := cached.Lookup(ctx, origin, destination)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, *first.Duration, *second.Duration)
	assert.Equal(t, "true", second.Tags[domain.TagCacheHit])
	assert.Equal(t, "2026-01-05T09:00:00Z", second.Tags[domain.TagCacheComputedAt])
	assert.NotContains(t, second.Tags, domain.TagCacheComputed)

	assert.Equal(t, 1, p.Calls())
	assert.Equal(t, DefaultTTL, kv.ttls[DurationKey("vrr", origin, destination)])
}

func TestCachedLookupDoesNotLeakRequestTagsIntoStore(t *testing.T) {
	ctx := context.Background()
	kv := newFakeStore()
	p := &countingProvider{result: domain.NewDurationResult(5*time.Minute, "vrr")}
	cached := wrapWith(kv, p)

	_, err := cached.Lookup(ctx, origin, destination)
	require.NoError(t, err)

	e, err := DecodeEntry(kv.data[DurationKey("vrr", origin, destination)])
	require.NoError(t, err)
	assert.NotContains(t, e.Value.Tags, domain.TagCacheComputed)
	assert.NotContains(t, p.result.Tags, domain.TagCacheComputedAt)
}

func TestCachedLookupNegativeCaching(t *testing.T) {
	ctx := context.Background()
	kv := newFakeStore()
	p := &countingProvider{}
	cached := wrapWith(kv, p)

	for i := 0; i < 3; i++ {
		got, err := cached.Lookup(ctx, origin, destination)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	assert.Equal(t, 1, p.Calls())
	assert.JSONEq(t, `{"is_present":false,"value":null}`, string(kv.data[DurationKey("vrr", origin, destination)]))
}

func TestCachedLookupStoreReadFailureActsAsColdCache(t *testing.T) {
	ctx := context.Background()
	kv := newFakeStore()
	kv.getErr = errStoreDown
	p := &countingProvider{result: domain.NewDurationResult(25*time.Minute, "vrr")}
	cached := wrapWith(kv, p)

	got, err := cached.Lookup(ctx, origin, destination)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 25*time.Minute, *got.Duration)
	assert.Equal(t, "exception", got.Tags[domain.TagCacheHit])
	assert.Equal(t, "true", got.Tags[domain.TagCacheComputed])

	_, err = cached.Lookup(ctx, origin, destination)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Calls())
}

func TestCachedLookupStoreWriteFailureStillReturnsValue(t *testing.T) {
	kv := newFakeStore()
	kv.setErr = errStoreDown
	p := &countingProvider{result: domain.NewDurationResult(12*time.Minute, "otp")}
	cached := wrapWith(kv, p)

	got, err := cached.Lookup(context.Background(), origin, destination)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 12*time.Minute, *got.Duration)
	assert.Equal(t, 1, kv.sets)
}

func TestCachedLookupCorruptEntryIsRecomputed(t *testing.T) {
	ctx := context.Background()
	kv := newFakeStore()
	key := DurationKey("vrr", origin, destination)
	kv.data[key] = []byte(`{"is_present": tru`)
	p := &countingProvider{result: domain.NewDurationResult(7*time.Minute, "vrr")}
	cached := wrapWith(kv, p)

	got, err := cached.Lookup(ctx, origin, destination)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "true", got.Tags[domain.TagCacheHit])
	assert.Equal(t, "err", got.Tags[domain.TagCacheValue])
	assert.Equal(t, "true", got.Tags[domain.TagCacheComputed])
	assert.Equal(t, 1, p.Calls())

	e, err := DecodeEntry(kv.data[key])
	require.NoError(t, err)
	assert.True(t, e.IsPresent)
}

func TestCachedLookupProviderErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	kv := newFakeStore()
	upstream := errors.New("upstream returned 502")
	p := &countingProvider{err: upstream}
	cached := wrapWith(kv, p)

	_, err := cached.Lookup(ctx, origin, destination)
	require.ErrorIs(t, err, upstream)
	assert.Empty(t, kv.data)
	assert.Zero(t, kv.sets)

	p.err = nil
	p.result = domain.NewDurationResult(time.Minute, "vrr")
	got, err := cached.Lookup(ctx, origin, destination)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, p.Calls())
}

func TestCachedLookupJitterSharesEntry(t *testing.T) {
	ctx := context.Background()
	kv := newFakeStore()
	p := &countingProvider{result: domain.NewDurationResult(3*time.Minute, "vrr")}
	cached := wrapWith(kv, p)

	_, err := cached.Lookup(ctx, domain.GeoCoordinate{Lat: 51.50000011, Lng: 7.00000049}, destination)
	require.NoError(t, err)
	_, err = cached.Lookup(ctx, domain.GeoCoordinate{Lat: 51.50000093, Lng: 7.0000002}, destination)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Calls())
}

func TestCachedLookupWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	p := &countingProvider{result: domain.NewDurationResult(40*time.Minute, "hafas")}
	cached := NewWrapper(store.NewMemoryStore(16)).WrapDurationProvider("hafas", p)

	for i := 0; i < 5; i++ {
		got, err := cached.Lookup(ctx, origin, destination)
		require.NoError(t, err)
		assert.Equal(t, 40*time.Minute, *got.Duration)
	}
	assert.Equal(t, 1, p.Calls())
}

func TestNoopWrapperPassesThrough(t *testing.T) {
	p := &countingProvider{result: domain.NewDurationResult(time.Minute, "vrr")}
	s := &fakeSearcher{}

	w := NewWrapper(nil)
	assert.IsType(t, NoopWrapper{}, w)
	assert.Same(t, p, w.WrapDurationProvider("vrr", p))
	assert.Same(t, s, w.WrapLocationSearch(s))

	got, err := w.WrapDurationProvider("vrr", p).Lookup(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Same(t, p.result, got)
}
