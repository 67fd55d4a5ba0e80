package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Demo accounts for local development. All share one password.
var testUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
	{Email: "alice.cooper@example.com", Username: "alicecooper", FirstName: "Alice", LastName: "Cooper"},
}

func main() {
	password := flag.String("password", "testpassword123", "Password given to every seeded user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Environment == config.Production {
		fmt.Fprintln(os.Stderr, "refusing to seed test users in production")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close(db)
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	auth := service.NewAuthService(store.New(db), nil, cfg.JWTSecret, cfg.JWTTTL)
	created := 0
	for _, req := range testUsers {
		req.Password = *password
		if _, err := auth.Register(ctx, &req); err != nil {
			if errors.Is(err, service.ErrConflict) {
				logging.Info().Str("email", req.Email).Msg("user already exists, skipping")
				continue
			}
			logging.Fatal().Err(err).Str("email", req.Email).Msg("failed to create user")
		}
		created++
	}
	logging.Info().Int("created", created).Msg("test users seeded")
}
