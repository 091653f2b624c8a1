package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"
	"traveltime-tiles/internal/adapters/store"
	"traveltime-tiles/internal/config"
	"traveltime-tiles/internal/platform/db"
	"traveltime-tiles/internal/platform/obs"

	"github.com/rs/zerolog/log"
)

// dbtool prepares and maintains the Postgres cache table.
//
//	dbtool            create the schema
//	dbtool -prune     also delete expired entries
func main() {
	prune := flag.Bool("prune", false, "delete expired cache entries after ensuring the schema")
	flag.Parse()

	hasDotEnv := config.LoadDotEnv()
	obs.InitLogger("traveltime-dbtool", config.Get("APP_ENV", "development"), config.Get("LOG_LEVEL", "info"))
	if !hasDotEnv {
		log.Info().Msg("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	log.Info().Msg("Initializing cache schema...")
	if err := store.InitSchema(ctx, conn); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}
	log.Info().Msg("Schema ready.")

	if !*prune {
		return
	}

	n, err := store.NewSQLStore(conn).PruneExpired(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("prune failed")
	}
	log.Info().Int64("deleted", n).Msg("Pruned expired entries.")
}
