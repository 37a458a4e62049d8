package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/application/store"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/config"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/interfaces/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	// Verify connections before announcing the server
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres: get DB")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		log.Info().Msg("Postgres connected")

		if cfg.SeedRegions {
			repo := &store.Repository{DB: db}
			if err := repo.SeedRegions(context.Background()); err != nil {
				log.Fatal().Err(err).Msg("region seed failed")
			}
			log.Info().Msg("canonical regions seeded")
		}
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}

	log.Info().Msgf("Server running at http://localhost:%s", cfg.Port)
	log.Info().Msgf("Health check: http://localhost:%s/health/json", cfg.Port)

	if err := app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
