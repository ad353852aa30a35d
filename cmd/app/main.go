package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/aeronavigator/config"
	"github.com/Domenick1991/aeronavigator/internal/cache"
	"github.com/Domenick1991/aeronavigator/internal/cli"
	"github.com/Domenick1991/aeronavigator/internal/kafka"
	"github.com/Domenick1991/aeronavigator/internal/repository"
	"github.com/Domenick1991/aeronavigator/internal/service/admin"
	"github.com/Domenick1991/aeronavigator/internal/service/booking"
	"github.com/Domenick1991/aeronavigator/internal/service/flights"
	"github.com/Domenick1991/aeronavigator/internal/service/identity"
	"github.com/Domenick1991/aeronavigator/internal/storage"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
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
	appLog := zl.With("component", "app")

	loc, err := time.LoadLocation(cfg.Catalog.Timezone)
	if err != nil {
		appLog.Fatal("invalid catalog timezone", "timezone", cfg.Catalog.Timezone, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := storage.RunMigrations(cfg.Database.DSN()); err != nil {
			appLog.Fatal("migrate database", "error", err)
		}
	}

	db, err := storage.New(ctx, cfg.Database, appLog)
	if err != nil {
		appLog.Fatal("connect postgres", "error", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	flightRepo := repository.NewFlightRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Interfaces stay nil when a backend is disabled so services can skip it.
	var flightCache flights.Cache
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.FlightsCacheTTL)*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			appLog.Warn("redis unavailable, flight listings will not be cached", "addr", cfg.Redis.Addr, "error", err)
			_ = redisCache.Close()
		} else {
			defer redisCache.Close()
			flightCache = redisCache
		}
	}

	flightService := flights.NewFlightService(flightRepo, flightCache, appLog,
		flights.WithDefaultLimit(cfg.Catalog.UpcomingLimit),
		flights.WithLocation(loc),
	)

	bookingOpts := []booking.BookingServiceOption{booking.WithCatalog(flightService)}
	adminOpts := []admin.AdminServiceOption{admin.WithCatalog(flightService), admin.WithLocation(loc)}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, appLog)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			appLog.Warn("kafka unavailable, events may be dropped", "error", err)
		}
		bookingOpts = append(bookingOpts, booking.WithEvents(producer, cfg.Kafka.BookingTopic))
		adminOpts = append(adminOpts, admin.WithEvents(producer, cfg.Kafka.FlightTopic))
	}

	session := cli.NewSession(os.Stdin, os.Stdout, cli.Services{
		Identity: identity.NewIdentityService(userRepo, cfg.Auth.BcryptCost, appLog),
		Flights:  flightService,
		Bookings: booking.NewBookingService(bookingRepo, flightRepo, appLog, bookingOpts...),
		Admin:    admin.NewAdminService(flightRepo, appLog, adminOpts...),
	}, appLog,
		cli.WithPasswordReader(cli.TerminalPasswordReader(os.Stdin, os.Stdout)),
		cli.WithLocation(loc),
		cli.WithUpcomingLimit(cfg.Catalog.UpcomingLimit),
	)

	if err := session.Run(ctx); err != nil && ctx.Err() == nil {
		appLog.Error("session ended with error", "error", err)
	}
}
