package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/aeronavigator/api"
	"github.com/Domenick1991/aeronavigator/config"
	"github.com/Domenick1991/aeronavigator/internal/cache"
	"github.com/Domenick1991/aeronavigator/internal/kafka"
	"github.com/Domenick1991/aeronavigator/internal/notify"
	"github.com/Domenick1991/aeronavigator/internal/repository"
	"github.com/Domenick1991/aeronavigator/internal/service/flights"
	"github.com/Domenick1991/aeronavigator/internal/storage"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
	"github.com/Domenick1991/aeronavigator/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()
	workerLog := zl.With("component", "worker")

	loc, err := time.LoadLocation(cfg.Catalog.Timezone)
	if err != nil {
		workerLog.Fatal("invalid catalog timezone", "timezone", cfg.Catalog.Timezone, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := storage.RunMigrations(cfg.Database.DSN()); err != nil {
			workerLog.Fatal("migrate database", "error", err)
		}
	}

	db, err := storage.New(ctx, cfg.Database, workerLog)
	if err != nil {
		workerLog.Fatal("connect postgres", "error", err)
	}
	defer db.Close()

	var flightCache flights.Cache
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.FlightsCacheTTL)*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			workerLog.Warn("redis unavailable, flight listings will not be cached", "addr", cfg.Redis.Addr, "error", err)
			_ = redisCache.Close()
		} else {
			defer redisCache.Close()
			flightCache = redisCache
		}
	}

	flightService := flights.NewFlightService(repository.NewFlightRepository(db), flightCache, workerLog,
		flights.WithDefaultLimit(cfg.Catalog.UpcomingLimit),
		flights.WithLocation(loc),
	)

	m := metrics.NewMetrics("aeronavigator", prometheus.DefaultRegisterer)

	if cfg.Kafka.Enabled() {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		handler := notify.Handler(notify.NewSender(workerLog.With("component", "notify")), m, workerLog)
		go func() {
			workerLog.Info("consuming notifications", "topic", cfg.Kafka.NotificationsTopic, "group", cfg.Kafka.GroupID)
			if err := consumer.Consume(ctx, handler); err != nil && ctx.Err() == nil {
				workerLog.Error("consumer stopped", "error", err)
			}
		}()
	} else {
		workerLog.Warn("no kafka brokers configured, notifications disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              cfg.Worker.HTTPAddress,
		Handler:           api.NewRouter(flightService, db, promhttp.Handler(), workerLog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		workerLog.Info("starting HTTP server", "addr", cfg.Worker.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			workerLog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	workerLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		workerLog.Error("HTTP server shutdown error", "error", err)
	}
}
