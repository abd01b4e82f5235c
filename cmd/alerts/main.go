package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lucasvieira/go-stock-orders/internal/alerts"
	"github.com/lucasvieira/go-stock-orders/internal/config"
	kafkax "github.com/lucasvieira/go-stock-orders/internal/kafka"
	"github.com/lucasvieira/go-stock-orders/internal/orders"
	"github.com/lucasvieira/go-stock-orders/internal/postgres"
	"github.com/lucasvieira/go-stock-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalw("db connect", "err", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer for the alert topic
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockAlerts, 1024, log)
	prod.Start(ctx)

	svc := &alerts.Service{
		DB:          db,
		Redis:       rdb,
		Producer:    prod,
		Threshold:   cfg.LowStockThreshold,
		ServiceName: cfg.ServiceName + "-alerts",
		Log:         log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AlertsGroup, orders.TopicOrderEvents, cfg.AlertsWorkers, log)

	go func() {
		log.Infow("alerts consumer started",
			"group", cfg.AlertsGroup, "topic", orders.TopicOrderEvents, "workers", cfg.AlertsWorkers)
		if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Errorw("consumer exit", "err", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	prod.Close()
	prod.WaitClosed()
}
