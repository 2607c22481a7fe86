package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamenight-tracker/internal/archive"
	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/dataset"
	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/handler"
	"github.com/gamenight-tracker/internal/kafka"
	"github.com/gamenight-tracker/internal/memory"
	"github.com/gamenight-tracker/internal/postgres"
	"github.com/gamenight-tracker/internal/redis"
	"github.com/gamenight-tracker/internal/service"
	"github.com/gamenight-tracker/internal/source"
	"github.com/gamenight-tracker/internal/stats"
	"github.com/gamenight-tracker/internal/websocket"
	"github.com/gamenight-tracker/internal/worker"
)

// storage is what both drivers provide
type storage interface {
	service.Repository
	worker.ArchiveLedger
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	var opts []service.Option
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		cache, err := redis.NewCache(&cfg.Redis, logger)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		opts = append(opts, service.WithCache(cache))
		logger.Info("connected to Redis")
	}

	// Initialize storage
	repo, closeRepo, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	opts = append(opts, service.WithBroadcaster(wsHub))

	// Initialize services
	store := source.NewStore(logger)
	calc := stats.NewCalculator(cfg.Stats.Options(), logger)
	trackerService := service.NewTrackerService(repo, store, calc, &cfg.Leaderboard, logger, opts...)
	defer trackerService.Close()

	wsHub.SetLoader(trackerService.LeaderboardForScope)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Load the first snapshot before serving
	snap, err := trackerService.Refresh(ctx)
	if err != nil {
		logger.Error("failed to load initial snapshot", "error", err)
		os.Exit(1)
	}
	logger.Info("snapshot loaded",
		"version", snap.Version,
		"players", len(snap.Players),
		"events", len(snap.Events),
		"results", len(snap.Results),
	)

	// Initialize refresh worker
	var archiver worker.Archiver
	if cfg.Archive.Enabled {
		s3Archiver, err := archive.NewS3Archiver(ctx, &cfg.Archive, logger)
		if err != nil {
			logger.Warn("failed to configure archive, continuing without it", "error", err)
		} else {
			archiver = s3Archiver
		}
	}
	refreshWorker := worker.NewRefreshWorker(trackerService, archiver, repo, &cfg.Sync, logger)

	if cfg.Sync.Enabled {
		if err := refreshWorker.Start(ctx); err != nil {
			logger.Error("failed to start refresh worker", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Kafka consumer for result ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, trackerService, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler with WebSocket hub
	auth := handler.NewAuthenticator(&cfg.Auth)
	if auth == nil {
		logger.Warn("auth.jwt_secret is empty, write routes are unauthenticated")
	}
	httpHandler := handler.NewHandler(trackerService, wsHub, auth, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop refresh worker
	if err := refreshWorker.Stop(); err != nil {
		logger.Error("failed to stop refresh worker", "error", err)
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}

// openStorage connects the configured driver and returns its close function
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		var seed domain.Snapshot
		if cfg.Storage.SeedFile != "" {
			var err error
			seed, err = dataset.Load(cfg.Storage.SeedFile)
			if err != nil {
				return nil, nil, err
			}
		}
		logger.Info("using in-memory storage", "seed_file", cfg.Storage.SeedFile)
		return memory.NewRepository(seed), func() {}, nil

	case config.StoragePostgres:
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		repo, err := postgres.NewRepository(&cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to PostgreSQL")

		// Run database migrations
		if err := repo.RunMigrations(ctx); err != nil {
			repo.Close()
			return nil, nil, err
		}
		return repo, repo.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
