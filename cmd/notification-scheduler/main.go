package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/subscription-manager/internal/config"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/rabbitmq"
	directoryservice "github.com/magabrotheeeer/subscription-manager/internal/services/directory"
	ledgerservice "github.com/magabrotheeeer/subscription-manager/internal/services/ledger"
	schedulerservice "github.com/magabrotheeeer/subscription-manager/internal/services/scheduler"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/postgres"
)

// noopNotifier планировщику не нужен порт доставки кодов:
// справочник используется только на чтение.
type noopNotifier struct{}

func (noopNotifier) SendVerificationCode(_, _ string) error { return nil }

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-scheduler", slog.String("env", cfg.Env))

	db, err := postgres.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("connected to RabbitMQ", slog.String("URL", cfg.RabbitMQURL))
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = ch.Close()
	}()

	ledgerService := ledgerservice.NewLedgerService(db, logger)
	directoryService := directoryservice.NewDirectoryService(db, noopNotifier{}, logger)
	schedulerService := schedulerservice.NewSchedulerService(ledgerService, directoryService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedulerService.FindExpiringSubscriptions(ctx, ch)

	logger.Info("notification-scheduler stopped gracefully")
}
