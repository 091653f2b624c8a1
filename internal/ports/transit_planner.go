package ports

import (
	"context"
	"traveltime-tiles/internal/domain"
)

// Port: a journey-planning backend queried for a specific travel time.
type TransitPlanner interface {
	// Source identifies the backend in cache keys and diagnostic tags.
	Source() string
	// Return the minimum total duration across all journeys found, or nil
	// when the backend returned none.
	QueryBestDuration(
		ctx context.Context,
		origin domain.GeoCoordinate,
		destination domain.GeoCoordinate,
		when domain.TravelTime,
	) (*domain.DurationResult, error)
}
