package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/config"
	"tap-rating-bot/internal/infrastructure/persistence"
	"tap-rating-bot/internal/interfaces/cli"
	"tap-rating-bot/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(openUsers, version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		stop()
		os.Exit(1)
	}
}

func openUsers(ctx context.Context) (*usecases.UserUseCase, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	// Keep stdout for tables; diagnostics go to stderr.
	logger.InitWithWriter(os.Stderr, "tapctl", cfg.Debug)

	db, err := persistence.Open(ctx, cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}

	return usecases.NewUserUseCase(persistence.NewUserRepository(db)), db, nil
}
