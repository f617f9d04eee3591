package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/strawberrylab/masterbot/internal/backend"
	"github.com/strawberrylab/masterbot/internal/infrastructure/configs"
	"github.com/strawberrylab/masterbot/internal/infrastructure/logging"
	"github.com/strawberrylab/masterbot/internal/infrastructure/messaging"
	"github.com/strawberrylab/masterbot/internal/infrastructure/metrics"
	"github.com/strawberrylab/masterbot/internal/persistence/db"
	"github.com/strawberrylab/masterbot/internal/persistence/repository"
	"github.com/strawberrylab/masterbot/internal/presentation/bot"
	"github.com/strawberrylab/masterbot/internal/relay"
	"github.com/strawberrylab/masterbot/internal/transport"
)

func main() {
	logger := logging.NewLogger(logging.NewDefaultConfig())

	cfg, err := configs.Load(configs.DetermineConfigPath())
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to load config",
			map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DB.Path)
	if err != nil {
		logger.Fatal(logging.Database, logging.Startup, "failed to open auth database",
			map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
	}
	defer conn.Close()

	identities := repository.NewIdentityRepository(conn)
	api := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	tgBot, err := bot.New(cfg.Telegram, api, identities, logger)
	if err != nil {
		logger.Fatal(logging.Telegram, logging.Startup, "failed to create telegram bot",
			map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
	}

	pipeline := relay.NewPipeline(
		identities,
		transport.NewTelegramSender(tgBot.Telebot()),
		logger,
		cfg.Rabbit.SendTimeout,
	)

	rmq := messaging.NewRabbitMQ(
		cfg.Rabbit.URI,
		cfg.Rabbit.Prefetch,
		messaging.SubscriptionsFromConfig(cfg.Rabbit.Subscriptions),
		pipeline,
		logger,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

	go func() {
		logger.Info(logging.Prometheus, logging.Startup, "serving metrics",
			map[logging.ExtraKey]any{logging.Path: cfg.Metrics.Addr + "/metrics"})
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(logging.Prometheus, logging.Startup, "metrics server failed",
				map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
		}
	}()

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := rmq.Run(ctx); err != nil {
			// Only a topology conflict at startup gets here; running a bot
			// that silently drops notifications is worse than not running
			// at all.
			logger.Fatal(logging.RabbitMQ, logging.Startup, "notification relay failed to start",
				map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
		}
	}()

	go func() {
		<-ctx.Done()
		tgBot.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	logger.Info(logging.General, logging.Startup, "masterbot started", nil)
	tgBot.Start()

	// The relay keeps settling in-flight deliveries for a grace period after
	// shutdown starts; do not exit from under it.
	<-relayDone

	logger.Info(logging.General, logging.Shutdown, "masterbot stopped", nil)
}
