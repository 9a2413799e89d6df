package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "rentacar-backend/internal/api/http"
	"rentacar-backend/internal/cache"
	"rentacar-backend/internal/config"
	"rentacar-backend/internal/events"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository/postgres"
	"rentacar-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply the database schema before serving")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentacar Booking Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Pricing configuration", "tax_rate_percent", cfg.Pricing.TaxRatePercent, "extra_km_rate", cfg.Pricing.ExtraKmRate, "currency", cfg.Pricing.Currency)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if *migrate {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db, cfg.Booking.ConfirmRetries)
	repos := store.Repositories

	// Catalog cache
	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, catalog reads fall back to the database", "addr", cfg.Redis.Addr, "error", err)
		}
		catalog := cache.NewCatalog(client, cfg.Redis.CatalogTTL())
		if *migrate {
			// Migrations may rewrite catalog rows
			if err := catalog.Invalidate(context.Background()); err != nil {
				logger.Warn("Failed to flush catalog cache", "error", err)
			}
		}
		repos.Groups = catalog.Groups(repos.Groups)
		repos.Locations = catalog.Locations(repos.Locations)
		logger.Info("Catalog cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CatalogTTL())
	}

	// Booking events
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.BookingEventsTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("Publishing booking events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.BookingEventsTopic)
	}

	defaults, err := cfg.Pricing.Defaults()
	if err != nil {
		log.Fatalf("Invalid pricing configuration: %v", err)
	}

	// Initialize Services
	bookingSvc := service.NewBookingService(repos, store, publisher, service.Options{
		Defaults:           defaults,
		Currency:           cfg.Pricing.Currency,
		CancellationWindow: cfg.Booking.CancellationWindow(),
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(bookingSvc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
