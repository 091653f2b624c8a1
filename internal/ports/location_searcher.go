package ports

import (
	"context"
	"traveltime-tiles/internal/domain"
)

// Contract for free-text location search.
type LocationSearcher interface {
	// Return matching locations; an empty list is a valid answer.
	Search(ctx context.Context, query string) ([]domain.Location, error)
}
