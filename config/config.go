package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Book     BookConfig
	API      APIConfig
	Logger   LoggerConfig
	Memory   MemoryConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Journal  JournalConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BookConfig holds order book configuration
type BookConfig struct {
	Engine           string
	HistoryCapacity  int
	VWAPDepth        int
	DefaultBandWidth decimal.Decimal
	LeftoverPolicy   string // reject, return
	TradeLogPath     string // empty disables the file tape
}

// APIConfig holds API-specific configuration
type APIConfig struct {
	DefaultTradeLimit int
	MaxTradeLimit     int
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string // DEBUG, INFO, WARN, ERROR
}

// MemoryConfig holds in-memory tape configuration
type MemoryConfig struct {
	MaxTrades int
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

// RedisConfig holds Redis tape configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	TLSEnabled   bool
	KeyPrefix    string
	MaxTrades    int
}

// JournalConfig holds the Pebble trade journal configuration
type JournalConfig struct {
	Enabled bool
	Path    string
	Sync    bool
}

var instance *Config

// Load loads configuration from .env file (if exists) and environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Book: BookConfig{
			Engine:           getEnv("BOOK_ENGINE", "price-time"),
			HistoryCapacity:  getEnvInt("BOOK_HISTORY_CAPACITY", 1000),
			VWAPDepth:        getEnvInt("BOOK_VWAP_DEPTH", 5),
			DefaultBandWidth: getEnvDecimal("BOOK_DEFAULT_BAND_WIDTH", decimal.NewFromInt(1)),
			LeftoverPolicy:   strings.ToLower(getEnv("BOOK_LEFTOVER_POLICY", "reject")),
			TradeLogPath:     os.Getenv("TRADE_LOG_PATH"),
		},
		API: APIConfig{
			DefaultTradeLimit: getEnvInt("DEFAULT_TRADE_LIMIT", 100),
			MaxTradeLimit:     getEnvInt("MAX_TRADE_LIMIT", 1000),
		},
		Logger: LoggerConfig{
			Level: strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		},
		Memory: MemoryConfig{
			MaxTrades: getEnvInt("MEMORY_MAX_TRADES", 1000),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DATABASE_ENABLED", false),
			Host:            getEnv("DATABASE_HOST", "localhost"),
			Port:            getEnvInt("DATABASE_PORT", 5432),
			Name:            getEnv("DATABASE_NAME", "auction_book"),
			User:            getEnv("DATABASE_USER", "postgres"),
			Password:        getEnv("DATABASE_PASSWORD", ""),
			MaxConns:        getEnvInt("DATABASE_MAX_CONNECTIONS", 20),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			SSLMode:         getEnv("DATABASE_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			MaxRetries:   getEnvInt("REDIS_MAX_RETRIES", 3),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			TLSEnabled:   getEnvBool("REDIS_TLS_ENABLED", false),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "book"),
			MaxTrades:    getEnvInt("REDIS_MAX_TRADES", 10000),
		},
		Journal: JournalConfig{
			Enabled: getEnvBool("JOURNAL_ENABLED", false),
			Path:    getEnv("JOURNAL_PATH", "data/journal"),
			Sync:    getEnvBool("JOURNAL_SYNC", true),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	instance = cfg
	return cfg, nil
}

// Get returns the singleton config instance
func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	// Book
	if c.Book.HistoryCapacity < 1 {
		return fmt.Errorf("BOOK_HISTORY_CAPACITY must be > 0")
	}
	if c.Book.VWAPDepth < 0 {
		return fmt.Errorf("BOOK_VWAP_DEPTH must be >= 0")
	}
	if !c.Book.DefaultBandWidth.IsPositive() {
		return fmt.Errorf("BOOK_DEFAULT_BAND_WIDTH must be > 0")
	}
	if c.Book.LeftoverPolicy != "reject" && c.Book.LeftoverPolicy != "return" {
		return fmt.Errorf("BOOK_LEFTOVER_POLICY must be one of: reject, return")
	}

	// API
	if c.API.DefaultTradeLimit < 1 {
		return fmt.Errorf("DEFAULT_TRADE_LIMIT must be > 0")
	}
	if c.API.MaxTradeLimit < c.API.DefaultTradeLimit {
		return fmt.Errorf("MAX_TRADE_LIMIT must be >= DEFAULT_TRADE_LIMIT")
	}

	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: DEBUG, INFO, WARN, ERROR")
	}

	// Storage
	if c.Memory.MaxTrades < 1 {
		return fmt.Errorf("MEMORY_MAX_TRADES must be > 0")
	}
	if c.Redis.Enabled && c.Redis.MaxTrades < 1 {
		return fmt.Errorf("REDIS_MAX_TRADES must be > 0")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("JOURNAL_PATH cannot be empty when the journal is enabled")
	}

	return nil
}

// Helper functions to read environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
