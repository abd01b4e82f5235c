package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lucasvieira/go-stock-orders/internal/catalog"
	"github.com/lucasvieira/go-stock-orders/internal/config"
	"github.com/lucasvieira/go-stock-orders/internal/httpx"
	kafkax "github.com/lucasvieira/go-stock-orders/internal/kafka"
	"github.com/lucasvieira/go-stock-orders/internal/orders"
	"github.com/lucasvieira/go-stock-orders/internal/postgres"
	"github.com/lucasvieira/go-stock-orders/internal/redisx"
	"github.com/lucasvieira/go-stock-orders/internal/reports"
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
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalw("db migrate", "err", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024, log)
	prod.Start(ctx)

	// Repos & handlers
	productRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	reportRepo := &reports.Repo{DB: db, Redis: rdb, LowStockThreshold: cfg.LowStockThreshold}

	router := httpx.NewRouter(cfg.MetricsEnabled)
	(&httpx.ProductsHandler{
		Repo:     productRepo,
		Reports:  reportRepo,
		Producer: prod,
		Service:  cfg.ServiceName,
		Log:      log,
	}).Register(router)
	(&httpx.OrdersHandler{
		Repo:     orderRepo,
		Reports:  reportRepo,
		Producer: prod,
		Service:  cfg.ServiceName,
		Log:      log,
	}).Register(router)
	(&httpx.ReportsHandler{
		Reports: reportRepo,
		Log:     log,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Infow("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen", "err", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox -> flush & close writer
	prod.WaitClosed()
	cancel()
}
