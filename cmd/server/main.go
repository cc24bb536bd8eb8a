package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamebuddy-app/internal/auth"
	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/handler"
	"github.com/gamebuddy-app/internal/kafka"
	"github.com/gamebuddy-app/internal/memory"
	"github.com/gamebuddy-app/internal/metrics"
	"github.com/gamebuddy-app/internal/mongo"
	"github.com/gamebuddy-app/internal/notification"
	"github.com/gamebuddy-app/internal/postgres"
	"github.com/gamebuddy-app/internal/redis"
	"github.com/gamebuddy-app/internal/seed"
	"github.com/gamebuddy-app/internal/service"
	"github.com/gamebuddy-app/internal/websocket"
	"github.com/gamebuddy-app/internal/worker"
	"github.com/google/uuid"
)

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
	if cfg.Auth.Secret == "" {
		logger.Warn("auth secret is empty, tokens are not secure")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appMetrics := metrics.New()

	// Gamer and catalog stores
	var (
		gamers   service.GamerStore
		catalog  service.CatalogStore
		messages service.MessageStore

		catalogSeeded bool
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Info("using in-memory storage")
		gamerStore := memory.NewGamerStore()
		catalogStore := memory.NewCatalogStore()
		if err := seed.Load(ctx, catalogStore); err != nil {
			logger.Error("failed to seed catalog", "error", err)
			os.Exit(1)
		}
		if err := seed.LoadDemoGamers(ctx, gamerStore); err != nil {
			logger.Error("failed to seed gamers", "error", err)
			os.Exit(1)
		}
		gamers, catalog, messages = gamerStore, catalogStore, memory.NewMessageStore()
		catalogSeeded = true

	default:
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		postgresRepo, err := postgres.NewRepository(&cfg.Postgres, logger)
		if err != nil {
			logger.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		defer postgresRepo.Close()

		if err := postgresRepo.RunMigrations(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		if cfg.Catalog.SeedOnStartup {
			if err := seed.Load(ctx, postgresRepo); err != nil {
				logger.Error("failed to seed catalog", "error", err)
				os.Exit(1)
			}
			catalogSeeded = true
		}

		logger.Info("connecting to MongoDB", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		messageStore, err := mongo.NewMessageStore(ctx, &cfg.Mongo, logger)
		if err != nil {
			logger.Error("failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer messageStore.Close(context.Background())

		if err := messageStore.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to create message indexes", "error", err)
		}
		gamers, catalog, messages = postgresRepo, postgresRepo, messageStore
	}

	applicationService := service.NewApplicationService(gamers, catalog, messages, logger)
	applicationService.SetMetrics(appMetrics)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Notifications go through Kafka when enabled, otherwise straight to the
	// local hub. Each instance consumes in its own group so every instance
	// sees every notification and delivers it to its own websocket clients.
	var sink notification.Sink = wsHub
	var kafkaProducer *kafka.Producer
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		cfg.Kafka.GroupID = cfg.Kafka.InstanceGroupID(uuid.NewString())
		logger.Info("initializing Kafka notifications", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group_id", cfg.Kafka.GroupID)
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, wsHub, logger)
		if err == nil {
			err = kafkaConsumer.Start()
		}
		if err != nil {
			logger.Warn("failed to start Kafka consumer, delivering locally", "error", err)
			kafkaConsumer = nil
		} else if kafkaProducer, err = kafka.NewProducer(&cfg.Kafka, logger); err != nil {
			logger.Warn("failed to create Kafka producer, delivering locally", "error", err)
			kafkaProducer = nil
		} else {
			sink = kafkaProducer
		}
	}

	dispatcher := notification.NewDispatcher(sink, &cfg.Notification, logger)
	dispatcher.SetMetrics(appMetrics)
	dispatcher.Start()
	applicationService.SetNotifier(dispatcher)

	// Catalog cache
	var catalogWarmer *worker.CatalogWarmer
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		catalogCache, err := redis.NewCatalogCache(&cfg.Redis, cfg.Catalog.CacheTTL, logger)
		if err != nil {
			logger.Warn("failed to connect to Redis, serving catalog from the store", "error", err)
		} else {
			defer catalogCache.Close()
			applicationService.SetCache(catalogCache)

			// Listings cached before a reseed are stale
			if catalogSeeded {
				removed, err := catalogCache.Invalidate(ctx)
				if err != nil {
					logger.Warn("failed to invalidate catalog cache", "error", err)
				} else {
					logger.Info("catalog cache invalidated", "keys", removed)
				}
			}

			if cfg.Catalog.WarmerEnabled {
				catalogWarmer = worker.NewCatalogWarmer(applicationService, catalogCache, cfg.Catalog.WarmInterval, logger)
				if err := catalogWarmer.Start(ctx); err != nil {
					logger.Error("failed to start catalog warmer", "error", err)
					os.Exit(1)
				}
			}
		}
	}

	tokens := auth.NewService(&cfg.Auth)
	httpHandler := handler.NewHandler(applicationService, auth.NewResolver(tokens, gamers), wsHub, logger)
	httpHandler.SetMetrics(appMetrics)
	httpHandler.SetRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	if catalogWarmer != nil {
		if err := catalogWarmer.Stop(); err != nil {
			logger.Error("failed to stop catalog warmer", "error", err)
		}
	}

	// Drain queued notifications before the sinks go away
	dispatcher.Stop()

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Error("failed to close Kafka producer", "error", err)
		}
	}

	wsHub.Stop()

	logger.Info("server stopped")
}
