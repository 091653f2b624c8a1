package dto

import "traveltime-tiles/internal/domain"

type LocationSearchParams struct {
	Query string `validate:"min=2,max=200"`
}

// Same envelope as the stop finder response, so the map frontend can read
// value.locations directly.
type LocationSearchResponse struct {
	Locations []domain.Location `json:"locations"`
}

type SourcesResponse struct {
	Sources []string `json:"sources"`
}
