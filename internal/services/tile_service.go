package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
	"traveltime-tiles/internal/domain"
	"traveltime-tiles/internal/platform/obs"
	"traveltime-tiles/internal/ports"
)

var ErrUnknownSource = errors.New("unknown source")

type TileRequest struct {
	Source string
	Origin domain.GeoCoordinate
	Tile   domain.TileIndex
}

type TileResult struct {
	PNG      []byte
	Duration *time.Duration
	Tags     map[string]string

	// Degraded is set when the provider failed and the tile shows N/A
	// instead of a duration.
	Degraded bool
}

type TileServiceOption func(*TileService)

// WithMarkComputed flags tiles whose duration was computed by the
// current request.
func WithMarkComputed(mark bool) TileServiceOption {
	return func(s *TileService) { s.markComputed = mark }
}

// TileService projects a tile to its center, looks up the travel time from
// the origin and renders the result.
type TileService struct {
	providers    map[string]ports.DurationProvider
	markComputed bool
}

func NewTileService(providers map[string]ports.DurationProvider, opts ...TileServiceOption) *TileService {
	s := &TileService{providers: maps.Clone(providers)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sources lists the registered provider names in sorted order.
func (s *TileService) Sources() []string {
	return slices.Sorted(maps.Keys(s.providers))
}

func (s *TileService) Render(ctx context.Context, req TileRequest) (_ *TileResult, err error) {
	defer obs.Time(ctx, "tile.render")(&err)

	if err := req.Tile.Validate(); err != nil {
		return nil, err
	}
	if err := req.Origin.Validate(); err != nil {
		return nil, err
	}

	provider, ok := s.providers[req.Source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, req.Source)
	}

	center := req.Tile.Center()

	out := &TileResult{Tags: map[string]string{}}

	res, lookupErr := provider.Lookup(ctx, req.Origin, center)
	switch {
	case lookupErr != nil:
		obs.Logger(ctx).Warn().
			Err(lookupErr).
			Str("src", req.Source).
			Str("origin", req.Origin.String()).
			Str("destination", center.String()).
			Msg("duration lookup failed, rendering N/A tile")
		out.Degraded = true
		out.Tags[domain.TagSource] = req.Source
		out.Tags[domain.TagBackendError] = "true"
	default:
		out.Duration = res.DurationOrNil()
		if res != nil {
			maps.Copy(out.Tags, res.Tags)
		}
	}

	mark := s.markComputed && out.Tags[domain.TagCacheComputed] == "true"

	out.PNG, err = RenderTile(req.Tile.TileSizePixels, out.Duration, RenderOptions{Mark: mark})
	if err != nil {
		return nil, err
	}
	return out, nil
}
