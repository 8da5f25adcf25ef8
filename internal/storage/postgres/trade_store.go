package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/PxPatel/auction-book/internal/types"
)

var insertTrade = insertTradeSQL()

// PostgresTradeStore archives the trade tape in PostgreSQL
type PostgresTradeStore struct {
	pool *pgxpool.Pool
}

// NewPostgresTradeStore creates a new PostgreSQL-backed trade store
func NewPostgresTradeStore(cfg PostgresConfig) (*PostgresTradeStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &PostgresTradeStore{pool: pool}, nil
}

func tradeArgs(trade *types.Trade) []any {
	return []any{
		int64(trade.TradeID),
		int64(trade.MakerOrderID),
		trade.MakerType.String(),
		int64(trade.TakerOrderID),
		trade.TakerType.String(),
		trade.TakerSide.String(),
		trade.Price.String(),
		trade.Quantity,
		trade.Timestamp,
	}
}

func (s *PostgresTradeStore) Save(trade *types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, insertTrade, tradeArgs(trade)...)
	return err
}

func (s *PostgresTradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use pgx batch for efficient batch inserts
	batch := &pgx.Batch{}
	for _, trade := range trades {
		batch.Queue(insertTrade, tradeArgs(trade)...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(trades); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at index %d: %w", i, err)
		}
	}

	return nil
}

func (s *PostgresTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT trade_id, maker_order_id, maker_order_type, taker_order_id,
			taker_order_type, taker_side, price::text, quantity, executed_at
		FROM (
			SELECT * FROM trades ORDER BY trade_id DESC LIMIT $1
		) recent
		ORDER BY trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*types.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

func scanTrade(row pgx.Row) (*types.Trade, error) {
	var (
		tradeID, makerID, takerID int64
		makerType, takerType      string
		takerSide, price          string
		trade                     types.Trade
	)
	err := row.Scan(&tradeID, &makerID, &makerType, &takerID, &takerType,
		&takerSide, &price, &trade.Quantity, &trade.Timestamp)
	if err != nil {
		return nil, err
	}

	trade.TradeID = uint64(tradeID)
	trade.MakerOrderID = uint64(makerID)
	trade.TakerOrderID = uint64(takerID)
	if trade.MakerType, err = types.ParseOrderType(makerType); err != nil {
		return nil, err
	}
	if trade.TakerType, err = types.ParseOrderType(takerType); err != nil {
		return nil, err
	}
	if trade.TakerSide, err = types.ParseSide(takerSide); err != nil {
		return nil, err
	}
	if trade.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &trade, nil
}

func (s *PostgresTradeStore) Close() error {
	s.pool.Close()
	return nil
}

// LastTradeID returns the highest archived trade id, or 0 for an empty table.
func (s *PostgresTradeStore) LastTradeID() (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id int64
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(trade_id), 0) FROM trades`).Scan(&id); err != nil {
		return 0, err
	}
	return uint64(id), nil
}
