package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"traveltime-tiles/internal/api/dto"
	"traveltime-tiles/internal/domain"
	"traveltime-tiles/internal/platform/obs"
	"traveltime-tiles/internal/services"
)

const tileCacheControl = "max-age=86400"

type TileRenderer interface {
	Render(ctx context.Context, req services.TileRequest) (*services.TileResult, error)
	Sources() []string
}

type TileHandler struct {
	Tiles TileRenderer
}

// Tile serves GET /api/{src}/{origin}/{size}/{z}/{x}/{y}.png.
func (h *TileHandler) Tile(w http.ResponseWriter, r *http.Request) {
	params, err := parseTileParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(params); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	origin, err := domain.ParseGeoCoordinate(params.Origin)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Tiles.Render(r.Context(), services.TileRequest{
		Source: params.Source,
		Origin: origin,
		Tile: domain.TileIndex{
			X:              params.X,
			Y:              params.Y,
			Zoom:           params.Z,
			TileSizePixels: params.Size,
		},
	})
	switch {
	case errors.Is(err, services.ErrUnknownSource),
		errors.Is(err, domain.ErrInvalidTile),
		errors.Is(err, domain.ErrInvalidCoordinate):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		obs.Logger(r.Context()).Error().Err(err).Msg("render tile failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	for k, v := range res.Tags {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "image/png")
	if res.Degraded {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", tileCacheControl)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PNG)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.PNG); err != nil {
		obs.Logger(r.Context()).Debug().Err(err).Msg("write tile failed")
	}
}

// Sources lists the backends tiles can be requested for.
func (h *TileHandler) Sources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.SourcesResponse{Sources: h.Tiles.Sources()})
}

func parseTileParams(r *http.Request) (dto.TileParams, error) {
	p := dto.TileParams{
		Source: r.PathValue("src"),
		Origin: r.PathValue("origin"),
	}

	y, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		return p, errors.New("tile must be requested as <y>.png")
	}

	for name, f := range map[string]struct {
		raw string
		dst *int
	}{
		"size": {r.PathValue("size"), &p.Size},
		"z":    {r.PathValue("z"), &p.Z},
		"x":    {r.PathValue("x"), &p.X},
		"y":    {y, &p.Y},
	} {
		n, err := strconv.Atoi(f.raw)
		if err != nil {
			return p, errors.New(name + " must be an integer")
		}
		*f.dst = n
	}
	return p, nil
}
