package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/config"
	"tap-rating-bot/internal/infrastructure/persistence"
	"tap-rating-bot/internal/interfaces/api"
	"tap-rating-bot/internal/logger"
	"tap-rating-bot/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init("tap-api", cfg.Debug)
	metrics.Register()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := persistence.Open(ctx, cfg.Database.Driver, cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize database")
	}
	defer db.Close()

	users := usecases.NewUserUseCase(persistence.NewUserRepository(db))
	router := api.NewRouter(users, api.Options{
		Prefix:      cfg.API.Prefix,
		CORSOrigins: cfg.API.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.APIAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("prefix", cfg.API.Prefix).Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("API server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}
