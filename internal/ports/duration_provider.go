package ports

import (
	"context"
	"traveltime-tiles/internal/domain"
)

// Contract for looking up the travel duration between two coordinates.
type DurationProvider interface {
	// Return the best travel duration from origin to destination.
	// A nil result with a nil error means no route exists.
	Lookup(ctx context.Context, origin, destination domain.GeoCoordinate) (*domain.DurationResult, error)
}
