package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/PxPatel/auction-book/config"
	"github.com/PxPatel/auction-book/internal/api"
	"github.com/PxPatel/auction-book/internal/api/handlers"
	"github.com/PxPatel/auction-book/internal/api/routes"
	"github.com/PxPatel/auction-book/internal/api/stream"
	"github.com/PxPatel/auction-book/internal/logger"
	"github.com/PxPatel/auction-book/internal/matching"
	"github.com/PxPatel/auction-book/internal/metrics"
	"github.com/PxPatel/auction-book/internal/storage"
	"github.com/PxPatel/auction-book/internal/storage/journal"
	"github.com/PxPatel/auction-book/internal/storage/postgres"
	"github.com/PxPatel/auction-book/internal/storage/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger with config
	logLevel, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(logger.NewLogger(logLevel))
	defer logger.Sync()

	logger.Info("Starting auction book API server", zap.String("version", handlers.Version))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	hub := stream.NewHub()
	go hub.Run()

	// Build storage layers based on configuration
	tradeStore, lastTradeID := buildTradeStores(cfg, hub)

	engine, err := matching.NewEngine(cfg.Book.Engine)
	if err != nil {
		logger.Error("Failed to create matching engine", zap.Error(err))
		os.Exit(1)
	}
	leftover, err := matching.ParseLeftoverPolicy(cfg.Book.LeftoverPolicy)
	if err != nil {
		logger.Error("Invalid leftover policy", zap.Error(err))
		os.Exit(1)
	}

	book, err := matching.NewOrderBook(
		matching.WithEngine(engine),
		matching.WithTradeStore(tradeStore),
		matching.WithFirstTradeID(lastTradeID),
		matching.WithMetrics(recorder),
		matching.WithLogger(logger.Default()),
		matching.WithLeftoverPolicy(leftover),
		matching.WithHistoryCapacity(cfg.Book.HistoryCapacity),
		matching.WithVWAPDepth(cfg.Book.VWAPDepth),
	)
	if err != nil {
		logger.Error("Failed to create order book", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := book.Close(); err != nil {
			logger.Error("Failed to close order book", zap.Error(err))
		}
	}()

	// Create book holder for dependency injection
	bookHolder := handlers.NewBookHolder(book, handlers.Limits{
		DefaultBandWidth:  cfg.Book.DefaultBandWidth,
		DefaultTradeLimit: cfg.API.DefaultTradeLimit,
		MaxTradeLimit:     cfg.API.MaxTradeLimit,
	})

	// Setup routes with middleware
	handler := routes.SetupRoutes(bookHolder, routes.Options{
		Gatherer: registry,
		Stream:   hub,
	})

	server := api.NewServer(cfg.Server, handler)

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("address", fmt.Sprintf("http://localhost:%s", cfg.Server.Port)))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited successfully")
}

// buildTradeStores constructs the tape layers based on configuration and
// reports the last trade id found in the durable ones. The in-memory layer
// comes first so reads are served from it.
func buildTradeStores(cfg *config.Config, hub *stream.Hub) (storage.TradeStore, uint64) {
	tradeStores := []storage.TradeStore{storage.NewInMemoryTradeStore(cfg.Memory.MaxTrades)}
	logger.Info("In-memory tape enabled", zap.Int("max_trades", cfg.Memory.MaxTrades))

	// Live trade stream for WebSocket subscribers
	tradeStores = append(tradeStores, hub)

	if cfg.Redis.Enabled {
		redisStore, err := redis.NewRedisTradeStore(redis.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			TLSEnabled:   cfg.Redis.TLSEnabled,
			KeyPrefix:    cfg.Redis.KeyPrefix,
			MaxTrades:    cfg.Redis.MaxTrades,
		})
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without trade cache", zap.Error(err))
		} else {
			logger.Info("Redis trade cache connected",
				zap.String("host", cfg.Redis.Host),
				zap.Int("port", cfg.Redis.Port))
			tradeStores = append(tradeStores, redisStore)
		}
	}

	if cfg.Database.Enabled {
		pgStore, err := postgres.NewPostgresTradeStore(postgres.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			MaxConns:        cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SSLMode:         cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Warn("Failed to connect to PostgreSQL, continuing without trade archive", zap.Error(err))
		} else {
			logger.Info("PostgreSQL trade archive connected",
				zap.String("host", cfg.Database.Host),
				zap.String("database", cfg.Database.Name))
			tradeStores = append(tradeStores, pgStore)
		}
	}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path, cfg.Journal.Sync)
		if err != nil {
			logger.Warn("Failed to open trade journal, continuing without it", zap.Error(err))
		} else {
			logger.Info("Trade journal opened", zap.String("path", cfg.Journal.Path))
			tradeStores = append(tradeStores, j)
		}
	}

	if cfg.Book.TradeLogPath != "" {
		if fileStore, err := storage.NewFileTradeStore(cfg.Book.TradeLogPath); err == nil {
			tradeStores = append(tradeStores, fileStore)
			logger.Info("Trade file log enabled", zap.String("path", cfg.Book.TradeLogPath))
		} else {
			logger.Warn("Failed to open trade file log", zap.Error(err))
		}
	}

	lastTradeID, err := storage.ResumeTradeID(tradeStores...)
	if err != nil {
		logger.Warn("Could not read last trade id from every durable store", zap.Error(err))
	}

	logger.Info("Tape layers initialized",
		zap.Int("trade_layers", len(tradeStores)),
		zap.Uint64("resume_after_trade_id", lastTradeID))

	return storage.NewCompositeTradeStore(tradeStores...), lastTradeID
}
