// seed writes the bundled catalog and user snapshots into the configured
// store. Collections that already exist are left untouched, so it is safe to
// run against a live database.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/app"
	"github.com/kompu/storefront/internal/core/service"
	"github.com/kompu/storefront/internal/pkg/config"
	"github.com/kompu/storefront/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "storefront-seed"})

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close(ctx)

	repos := app.NewRepositories(backend.KV, cfg.Store.Prefix)
	report, err := app.NewSeeder(cfg, repos, service.NewTxn(), log).Seed(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Str("backend", cfg.Store.Backend).
		Bool("products", report.Products).
		Bool("users", report.Users).
		Bool("orders", report.Orders).
		Msg("seed finished")
	return nil
}
