package cache

import (
	"context"
	"fmt"
	"time"
	"traveltime-tiles/internal/domain"
	"traveltime-tiles/internal/platform/obs"
	"traveltime-tiles/internal/ports"
)

// CachedDurationProvider is a cache-aside decorator over a DurationProvider.
//
// Store failures never reach the caller: a failed or undecodable read is a
// miss, and a failed write only loses the cache entry. "No route" answers
// are cached too (negative caching). Concurrent misses for the same key
// each call the inner provider; the last write wins.
type CachedDurationProvider struct {
	prefix  string
	inner   ports.DurationProvider
	store   ports.KeyValueStore
	ttl     time.Duration
	now     func() time.Time
	metrics *obs.CacheMetrics
}

func (c *CachedDurationProvider) Lookup(
	ctx context.Context,
	origin domain.GeoCoordinate,
	destination domain.GeoCoordinate,
) (_ *domain.DurationResult, err error) {
	defer obs.Time(ctx, "cache.duration.Lookup")(&err)

	key := DurationKey(c.prefix, origin, destination)
	tags := make(map[string]string, 3)

	entry, outcome := c.read(ctx, key, tags)
	c.metrics.RecordLookup(ctx, c.prefix, outcome.String())

	if outcome != LookupHit {
		entry, err = c.compute(ctx, key, origin, destination)
		if err != nil {
			return nil, err
		}
		tags[domain.TagCacheComputed] = "true"
	}

	if !entry.IsPresent {
		return nil, nil
	}

	return entry.Value.WithTags(tags), nil
}

// read fetches and decodes the entry for key, recording diagnostic tags.
func (c *CachedDurationProvider) read(ctx context.Context, key string, tags map[string]string) (Entry, LookupOutcome) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		obs.Logger(ctx).Warn().Err(err).Str("prefix", c.prefix).Str("key", key).Msg("cache read failed, recomputing")
		tags[domain.TagCacheHit] = "exception"
		return Entry{}, LookupMissError
	}
	if !ok {
		return Entry{}, LookupMiss
	}

	tags[domain.TagCacheHit] = "true"

	entry, err := DecodeEntry(raw)
	if err != nil {
		obs.Logger(ctx).Warn().Err(err).Str("prefix", c.prefix).Str("key", key).Msg("discarding cache entry")
		tags[domain.TagCacheValue] = "err"
		return Entry{}, LookupMissCorrupt
	}

	return entry, LookupHit
}

// compute asks the inner provider and stores the answer. Provider errors
// are returned before anything is written.
func (c *CachedDurationProvider) compute(
	ctx context.Context,
	key string,
	origin domain.GeoCoordinate,
	destination domain.GeoCoordinate,
) (Entry, error) {
	value, err := c.inner.Lookup(ctx, origin, destination)
	if err != nil {
		return Entry{}, fmt.Errorf("cached %s lookup %s -> %s: %w", c.prefix, origin, destination, err)
	}

	entry := absentEntry()
	if value != nil {
		value = value.Clone().WithTags(map[string]string{
			domain.TagCacheComputedAt: c.now().UTC().Format(time.RFC3339Nano),
		})
		entry = presentEntry(value)
	}

	payload, err := EncodeEntry(entry)
	if err != nil {
		obs.Logger(ctx).Warn().Err(err).Str("prefix", c.prefix).Msg("cache entry not stored")
		return entry, nil
	}

	err = c.store.Set(ctx, key, payload, c.ttl)
	c.metrics.RecordWrite(ctx, c.prefix, err)
	if err != nil {
		obs.Logger(ctx).Warn().Err(err).Str("prefix", c.prefix).Str("key", key).Msg("cache write failed")
	}

	return entry, nil
}
