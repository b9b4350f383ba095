package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gameswap/exchange/internal/config"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/mailer"
	"github.com/gameswap/exchange/internal/notifier"
	"github.com/gameswap/exchange/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	addSource := cfg.Environment == "dev" || cfg.Environment == "development"
	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		"notifier",
		cfg.Version,
		cfg.Environment,
		addSource,
	))

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort)
	handler := notifier.NewEmailHandler(smtpMailer)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Each worker is its own consumer in the shared group; the broker
	// balances partitions across them. A worker failure is fatal for the
	// whole process: its partitions hold an unprocessable message, and
	// limping on with the remaining workers would hide that.
	var wg sync.WaitGroup
	var once sync.Once
	var runErr error
	consumers := make([]*notify.Consumer, 0, cfg.ConsumerWorkers)
	for i := 0; i < cfg.ConsumerWorkers; i++ {
		consumer, err := notify.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, cfg.DedupeCacheSize, handler)
		if err != nil {
			slog.Error("Failed to create consumer", "error", err)
			os.Exit(1)
		}
		consumers = append(consumers, consumer)

		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := consumer.Run(ctx); err != nil {
				slog.Error("Consumer stopped with error", "worker", worker, "error", err)
				once.Do(func() { runErr = err })
				cancel()
			}
		}(i)
	}

	slog.Info("Notifier started",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaTopic,
		"group", cfg.KafkaGroupID,
		"workers", cfg.ConsumerWorkers)

	<-ctx.Done()
	slog.Info("Shutdown signal received")

	wg.Wait()
	for _, consumer := range consumers {
		if err := consumer.Close(); err != nil {
			slog.Error("Failed to close consumer", "error", err)
		}
	}
	if runErr != nil {
		slog.Error("Notifier stopped after consumer failure", "error", runErr)
		os.Exit(1)
	}
	slog.Info("Notifier stopped")
}
