package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/store"
)

func main() {
	file := flag.String("file", "data/ingredients.json", "JSON file with name/measurement_unit entries")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	seeds, err := readSeeds(*file)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("failed to read ingredients")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close(db)
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	created, err := service.NewIngredientService(store.New(db)).Load(ctx, seeds)
	if err != nil {
		logging.Fatal().Err(err).Int("created", created).Msg("failed to load ingredients")
	}
	logging.Info().Int("total", len(seeds)).Int("created", created).Msg("ingredients loaded")
}

func readSeeds(path string) ([]service.IngredientSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seeds []service.IngredientSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("invalid ingredients file: %w", err)
	}
	return seeds, nil
}
