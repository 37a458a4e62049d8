package main

import (
	"context"
	"flag"
	"os"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/application/store"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/config"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/infrastructure/database"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Batch importer for the Opencoesione CSV exports. Loads one file or a
// directory of files into the dataset in a single transaction.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		path = flag.String("path", "", "CSV file or directory to import (defaults to IMPORT_PATH)")
		seed = flag.Bool("seed", false, "seed the canonical region set before importing")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}

	source := *path
	if source == "" {
		source = cfg.ImportPath
	}
	if source == "" {
		log.Fatal().Msg("no import path: pass -path or set IMPORT_PATH")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database open")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx := context.Background()
	repo := &store.Repository{DB: db}

	if *seed || cfg.SeedRegions {
		if err := repo.SeedRegions(ctx); err != nil {
			log.Fatal().Err(err).Msg("region seed failed")
		}
		log.Info().Msg("canonical regions seeded")
	}

	run, err := repo.ImportPath(ctx, source)
	if err != nil {
		log.Fatal().Err(err).Str("path", source).Msg("import failed")
	}

	log.Info().
		Int("files", run.FileCount).
		Int("rows", run.RowCount).
		Int("projects", run.ProjectCount).
		Int("locations_created", run.LocationsCreated).
		Msg("import completed")
}
