package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PxPatel/auction-book/internal/types"
)

const defaultKeyPrefix = "book"

// RedisConfig holds the trade cache connection and retention settings
type RedisConfig struct {
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

func (cfg RedisConfig) options() *redis.Options {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	// Managed providers such as Upstash require TLS
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// RedisTradeStore keeps the most recent trades in a sorted set scored by
// trade id, trimming the oldest beyond maxTrades.
type RedisTradeStore struct {
	client    *redis.Client
	key       string
	maxTrades int
}

// NewRedisTradeStore connects and checks that the recent-trades key is either
// unused or already a sorted set, so every later ZADD can succeed.
func NewRedisTradeStore(cfg RedisConfig) (*RedisTradeStore, error) {
	store := NewRedisTradeStoreWithClient(redis.NewClient(cfg.options()), cfg.KeyPrefix, cfg.MaxTrades)
	if err := store.check(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// NewRedisTradeStoreWithClient wraps an existing client.
func NewRedisTradeStoreWithClient(client *redis.Client, keyPrefix string, maxTrades int) *RedisTradeStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if maxTrades < 1 {
		maxTrades = 1
	}
	return &RedisTradeStore{
		client:    client,
		key:       keyPrefix + ":trades:recent",
		maxTrades: maxTrades,
	}
}

func (s *RedisTradeStore) check() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	kind, err := s.client.Type(ctx, s.key).Result()
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", s.key, err)
	}
	if kind != "none" && kind != "zset" {
		return fmt.Errorf("redis key %s holds a %s, not a sorted set of trades", s.key, kind)
	}
	return nil
}

func (s *RedisTradeStore) Save(trade *types.Trade) error {
	return s.SaveBatch([]*types.Trade{trade})
}

func (s *RedisTradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := s.client.Pipeline()

	for _, trade := range trades {
		data, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("failed to encode trade %d: %w", trade.TradeID, err)
		}
		pipe.ZAdd(ctx, s.key, redis.Z{
			Score:  float64(trade.TradeID),
			Member: data,
		})
	}

	// Trim to keep only last N trades
	pipe.ZRemRangeByRank(ctx, s.key, 0, int64(-s.maxTrades-1))

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	results, err := s.client.ZRevRange(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	// ZRevRange is newest first; the tape is read oldest first
	trades := make([]*types.Trade, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		var trade types.Trade
		if err := json.Unmarshal([]byte(results[i]), &trade); err != nil {
			continue
		}
		trades = append(trades, &trade)
	}

	return trades, nil
}

func (s *RedisTradeStore) Close() error {
	return s.client.Close()
}
