package handlers

import (
	"net/http"
	"strings"
	"traveltime-tiles/internal/api/dto"
	"traveltime-tiles/internal/domain"
	"traveltime-tiles/internal/platform/obs"
	"traveltime-tiles/internal/ports"
)

type LocationHandler struct {
	Searcher ports.LocationSearcher
}

// Search proxies a free-text location query to the backend.
func (h *LocationHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := dto.LocationSearchParams{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if err := validate.Struct(params); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	locs, err := h.Searcher.Search(r.Context(), params.Query)
	if err != nil {
		obs.Logger(r.Context()).Error().Err(err).Str("q", params.Query).Msg("location search failed")
		writeError(w, r, http.StatusBadGateway, "location search failed")
		return
	}

	if locs == nil {
		locs = []domain.Location{}
	}
	writeJSON(w, r, http.StatusOK, dto.LocationSearchResponse{Locations: locs})
}
