package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed 001_initial_schema.sql
var initialSchema string

// tradeColumns lists the trades table columns in tradeArgs order. Each one
// carries a field of types.Trade, including the maker/taker order types and
// the taker side that decide which order was the buyer.
var tradeColumns = []string{
	"trade_id",
	"maker_order_id",
	"maker_order_type",
	"taker_order_id",
	"taker_order_type",
	"taker_side",
	"price",
	"quantity",
	"executed_at",
}

// RunMigrations replays the idempotent schema and then verifies that the
// trades table can hold every trade field. A table created by an older
// schema is reported instead of failing on the first insert.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, initialSchema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	rows, err := pool.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = 'trades'`)
	if err != nil {
		return fmt.Errorf("failed to inspect trades table: %w", err)
	}
	have, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to inspect trades table: %w", err)
	}

	if missing := missingColumns(have); len(missing) > 0 {
		return fmt.Errorf("trades table is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func missingColumns(have []string) []string {
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[c] = true
	}
	var missing []string
	for _, c := range tradeColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func insertTradeSQL() string {
	placeholders := make([]string, len(tradeColumns))
	for i := range tradeColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO trades (%s) VALUES (%s) ON CONFLICT (trade_id) DO NOTHING",
		strings.Join(tradeColumns, ", "), strings.Join(placeholders, ", "))
}
