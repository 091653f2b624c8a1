package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"traveltime-tiles/internal/domain"
	"traveltime-tiles/internal/platform/obs"
	"traveltime-tiles/internal/ports"
)

const searchNamespace = "search"

// CachedLocationSearcher caches search results verbatim. There is no
// negative caching here: an empty result list is simply a cached value.
type CachedLocationSearcher struct {
	inner   ports.LocationSearcher
	store   ports.KeyValueStore
	ttl     time.Duration
	metrics *obs.CacheMetrics
}

func (c *CachedLocationSearcher) Search(ctx context.Context, query string) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "cache.search.Search")(&err)

	key := SearchKey(query)

	locations, outcome := c.read(ctx, key)
	c.metrics.RecordLookup(ctx, searchNamespace, outcome.String())
	if outcome == LookupHit {
		return locations, nil
	}

	locations, err = c.inner.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("cached search %q: %w", query, err)
	}
	if locations == nil {
		locations = []domain.Location{}
	}

	payload, err := json.Marshal(locations)
	if err != nil {
		obs.Logger(ctx).Warn().Err(err).Str("query", query).Msg("search result not stored")
		return locations, nil
	}

	err = c.store.Set(ctx, key, payload, c.ttl)
	c.metrics.RecordWrite(ctx, searchNamespace, err)
	if err != nil {
		obs.Logger(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}

	return locations, nil
}

func (c *CachedLocationSearcher) read(ctx context.Context, key string) ([]domain.Location, LookupOutcome) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		obs.Logger(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed, recomputing")
		return nil, LookupMissError
	}
	if !ok {
		return nil, LookupMiss
	}

	var locations []domain.Location
	if err := json.Unmarshal(raw, &locations); err != nil || locations == nil {
		return nil, LookupMissCorrupt
	}
	return locations, LookupHit
}
