package api

import (
	"net/http"
	"traveltime-tiles/internal/api/handlers"
	"traveltime-tiles/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// When staticDir is set, the map frontend in it is served under /.
func NewRouter(tiles handlers.TileRenderer, searcher ports.LocationSearcher, staticDir string) http.Handler {
	mux := http.NewServeMux()

	tileHandler := &handlers.TileHandler{Tiles: tiles}
	locationHandler := &handlers.LocationHandler{Searcher: searcher}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /api/sources", tileHandler.Sources)
	mux.HandleFunc("GET /api/locations/search/{$}", locationHandler.Search)
	mux.HandleFunc("GET /api/{src}/{origin}/{size}/{z}/{x}/{file}", tileHandler.Tile)

	if staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}
