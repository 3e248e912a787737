package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/app/api"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/migrations"
	platformpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	db, cleanup := platformpostgres.ConnectWithFallback(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot migrate")
	}

	if err := migrations.Run(db); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}
	logger.Info("schema migration completed")
}
