// @title        Kompu storefront API
// @version      1.0
// @description  Catalog, cart, checkout and administration for the Kompu hardware shop.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kompu/storefront/internal/app"
	"github.com/kompu/storefront/internal/pkg/config"
	"github.com/kompu/storefront/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "storefront",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("failed to open store backend")
	}

	a, err := app.New(cfg, backend, log)
	if err != nil {
		_ = backend.Close(ctx)
		log.Fatal().Err(err).Msg("failed to wire application")
	}
	if err := a.Start(ctx); err != nil {
		_ = backend.Close(ctx)
		log.Fatal().Err(err).Msg("failed to start application")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
	cancel()
	if err := a.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to release resources")
	}

	log.Info().Msg("server stopped")
}
