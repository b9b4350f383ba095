package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gameswap/exchange/internal/auth"
	"github.com/gameswap/exchange/internal/concurrency"
	"github.com/gameswap/exchange/internal/config"
	"github.com/gameswap/exchange/internal/database"
	"github.com/gameswap/exchange/internal/database/postgres"
	"github.com/gameswap/exchange/internal/exchange"
	"github.com/gameswap/exchange/internal/notify"
	"github.com/gameswap/exchange/internal/server"
	"github.com/gameswap/exchange/internal/trade"
	"github.com/gameswap/exchange/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	pool, err := database.NewPool(cfg.GetDBConnString(), 10, 5*time.Minute, 30*time.Minute)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(pool)
	tradeRepo := postgres.NewTradeRepository(pool)

	publisher := notify.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.PublishTimeout)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Failed to close publisher", "error", err)
		}
	}()

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.ServiceName, cfg.JWTTTL)
	locks := concurrency.NewLockManager()
	coordinator := exchange.NewCoordinator(userRepo, locks, cfg.SwapInsertRetries, cfg.SwapRetryBackoff)

	userService := user.NewService(userRepo, tokens, publisher)
	tradeService := trade.NewService(tradeRepo, userRepo, coordinator, publisher, locks)

	srv := server.NewServer(cfg.Port, tokens, cfg.TrustedProxies, pool, userService, tradeService)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		slog.Info("Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server forced to shut down", "error", err)
	}
	slog.Info("Server stopped")
}
