package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/config"
	"tap-rating-bot/internal/infrastructure/persistence"
	"tap-rating-bot/internal/infrastructure/session"
	"tap-rating-bot/internal/infrastructure/telegram"
	"tap-rating-bot/internal/interfaces/telegram/handlers"
	"tap-rating-bot/internal/logger"
	"tap-rating-bot/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init("tap-bot", cfg.Debug)
	metrics.Register()

	if cfg.Telegram.BotToken == "" {
		logger.Fatal().Msg("BOT_TOKEN environment variable is required")
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := persistence.Open(ctx, cfg.Database.Driver, cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Conversation state lives in Redis so any instance can continue a form
	redisClient, err := session.NewRedisClient(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr()).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	location, err := time.LoadLocation(cfg.Digest.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Digest.Timezone).Msg("Invalid digest timezone")
	}

	// Initialize repositories
	userRepo := persistence.NewUserRepository(db)
	ratingRepo := persistence.NewRatingRepository(db)

	// Initialize Telegram bot
	bot, err := telegram.NewBot(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup bot commands with Telegram
	if err := bot.SetupCommands(); err != nil {
		logger.Warn().Err(err).Msg("Failed to setup bot commands; they won't show in Telegram's menu")
	}

	// Initialize use cases
	userUseCase := usecases.NewUserUseCase(userRepo)
	ratingUseCase := usecases.NewRatingUseCase(userRepo, ratingRepo)
	registration := usecases.NewRegistrationFlow(
		session.NewRedisStorage(redisClient, cfg.Redis.StateTTL),
		bot,
		ratingUseCase,
	)
	digestUseCase := usecases.NewDigestUseCase(bot, userUseCase, ratingUseCase, usecases.DigestConfig{
		Schedule: cfg.Digest.Schedule,
		Location: location,
		TopN:     cfg.Digest.TopN,
	})

	// Initialize handler
	handler := handlers.NewBotHandler(bot, userUseCase, ratingUseCase, registration, digestUseCase, handlers.Options{
		LeaderboardLimit: cfg.LeaderboardLimit,
		IsAdmin:          cfg.IsAdmin,
	})

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	// Start digest scheduler in background
	digestDone := make(chan struct{})
	go func() {
		defer close(digestDone)
		if err := digestUseCase.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("Digest scheduler failed")
		}
	}()

	logger.Info().Str("driver", db.Driver()).Msg("Starting tap rating bot...")
	if err := handler.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Bot error")
	}

	logger.Info().Msg("Shutting down...")
	<-digestDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Metrics server shutdown failed")
	}
}
