package matching

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/PxPatel/auction-book/internal/logger"
	"github.com/PxPatel/auction-book/internal/matching"
	"github.com/PxPatel/auction-book/internal/metrics"
	"github.com/PxPatel/auction-book/internal/types"
)

// gathered sums every sample of the named metric family.
func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			}
		}
	}
	return sum
}

type brokenTape struct{}

func (brokenTape) Save(*types.Trade) error               { return errors.New("disk full") }
func (brokenTape) SaveBatch([]*types.Trade) error        { return errors.New("disk full") }
func (brokenTape) GetRecent(int) ([]*types.Trade, error) { return nil, errors.New("disk full") }
func (brokenTape) Close() error                          { return nil }

func TestBookRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	book := newBook(t, matching.WithMetrics(metrics.NewRecorder(reg)))

	mustLimit(t, book, 1, matching.Sell, "101", 5)
	mustLimit(t, book, 2, matching.Buy, "99", 5)
	mustLimit(t, book, 3, matching.Buy, "101", 2)
	if _, err := book.SubmitLimitOrder(4, matching.Buy, d("0"), 1); err == nil {
		t.Fatal("Expected zero price to be rejected")
	}
	if _, err := book.SubmitMarketOrder(5, matching.Buy, 10); err == nil {
		t.Fatal("Expected market order to run out of liquidity")
	}
	if err := book.CancelOrder(2); err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}

	checks := map[string]float64{
		"auction_book_orders_submitted_total":       4,
		"auction_book_orders_rejected_total":        1,
		"auction_book_trades_total":                 2,
		"auction_book_traded_quantity_total":        5,
		"auction_book_market_orders_unfilled_total": 1,
		"auction_book_orders_canceled_total":        1,
		"auction_book_resting_orders":               0,
	}
	for name, want := range checks {
		if got := gathered(t, reg, name); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestTapeFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	book, err := matching.NewOrderBook(
		matching.WithTradeStore(brokenTape{}),
		matching.WithLogger(logger.Wrap(zap.New(core))),
	)
	if err != nil {
		t.Fatalf("NewOrderBook() error = %v", err)
	}

	mustLimit(t, book, 1, matching.Sell, "100", 1)
	exec := mustLimit(t, book, 2, matching.Buy, "100", 1)
	if exec.Filled != 1 || len(exec.Trades) != 1 {
		t.Fatalf("Trade should still execute, got %+v", exec)
	}

	warnings := logs.FilterMessage("failed to append trades to tape")
	if warnings.Len() != 1 {
		t.Fatalf("Expected one tape warning, got %d", warnings.Len())
	}
	if _, err := book.RecentTrades(10); err == nil {
		t.Error("RecentTrades should surface the tape read error")
	}
}
