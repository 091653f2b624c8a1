package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"traveltime-tiles/internal/adapters/cache"
	"traveltime-tiles/internal/adapters/store"
	"traveltime-tiles/internal/adapters/transit"
	"traveltime-tiles/internal/api"
	"traveltime-tiles/internal/config"
	"traveltime-tiles/internal/platform/db"
	"traveltime-tiles/internal/platform/obs"
	"traveltime-tiles/internal/ports"
	"traveltime-tiles/internal/services"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// main is the application composition root.
// It wires concrete adapters (cache store, transit backends) behind ports and starts the HTTP server.
func main() {
	hasDotEnv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		obs.InitLogger("traveltime-tiles", "development", "info")
		log.Fatal().Err(err).Msg("load config")
	}

	obs.InitLogger("traveltime-tiles", cfg.Env, cfg.LogLevel)
	if !hasDotEnv {
		log.Info().Msg("No .env file found (using environment variables)")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	if kv != nil {
		defer kv.Close()
	}
	log.Info().Str("store", cfg.Cache.Store).Msg("cache store ready")

	wrapper := cache.NewWrapper(kv,
		cache.WithTTL(cfg.CacheTTL()),
		cache.WithMetrics(obs.NewCacheMetrics()),
	)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	timeout, err := cfg.TransitTimeout()
	if err != nil {
		return err
	}

	vrr := transit.NewVRRClient(transit.VRRConfig{
		TripURL:       cfg.Transit.VRRTripURL,
		StopFinderURL: cfg.Transit.VRRStopFinderURL,
		Timeout:       timeout,
	})
	planners := []ports.TransitPlanner{vrr}

	if cfg.Transit.OTPURL != "" {
		planners = append(planners, transit.NewOTPClient(transit.OTPConfig{
			GraphQLURL: cfg.Transit.OTPURL,
			Timeout:    timeout,
		}))
	}
	if h := cfg.Transit.HAFAS; h.URL != "" {
		planners = append(planners, transit.NewHAFASClient(transit.HAFASConfig{
			URL:        h.URL,
			Salt:       h.Salt,
			ClientID:   h.ClientID,
			ClientType: h.ClientType,
			ClientName: h.ClientName,
			AuthAID:    h.AuthAID,
			Version:    h.Version,
			Ext:        h.Ext,
			Timeout:    timeout,
		}))
	}

	providers := make(map[string]ports.DurationProvider, len(planners))
	for _, p := range planners {
		providers[p.Source()] = wrapper.WrapDurationProvider(p.Source(), transit.NewPlanner(p, transit.WithLocation(loc)))
	}

	tiles := services.NewTileService(providers, services.WithMarkComputed(cfg.MarkComputedTiles))
	searcher := wrapper.WrapLocationSearch(vrr)
	log.Info().Strs("sources", tiles.Sources()).Msg("transit backends ready")

	// Timeouts allow for a cold cache: a tile may wait on a full backend retry cycle.
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           api.NewRouter(tiles, searcher, cfg.StaticDir),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore returns the configured KeyValueStore, or nil when caching is
// disabled.
func openStore(ctx context.Context, c config.CacheConfig) (ports.KeyValueStore, error) {
	switch c.Store {
	case config.StoreMemcached:
		return store.NewMemcachedStore(c.MemcachedURL, time.Second)
	case config.StoreRedis:
		return store.OpenRedisStore(ctx, c.RedisURL)
	case config.StorePostgres:
		conn, err := db.Open(ctx, c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		return store.NewSQLStore(conn), nil
	case config.StoreMemory:
		return store.NewMemoryStore(c.MemorySize), nil
	}
	return nil, nil
}
