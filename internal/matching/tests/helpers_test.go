package matching

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/PxPatel/auction-book/internal/logger"
	"github.com/PxPatel/auction-book/internal/matching"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// tb is satisfied by *testing.T, *testing.B and *rapid.T
type tb interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newBook(t tb, opts ...matching.Option) *matching.OrderBook {
	t.Helper()
	opts = append([]matching.Option{matching.WithLogger(logger.Wrap(zap.NewNop()))}, opts...)
	book, err := matching.NewOrderBook(opts...)
	if err != nil {
		t.Fatalf("NewOrderBook() error = %v", err)
	}
	return book
}

func mustLimit(t tb, book *matching.OrderBook, id uint64, side matching.SideType, price string, qty int64) *matching.Execution {
	t.Helper()
	exec, err := book.SubmitLimitOrder(id, side, d(price), qty)
	if err != nil {
		t.Fatalf("SubmitLimitOrder(%d) error = %v", id, err)
	}
	return exec
}

func liveQuantity(book *matching.OrderBook, id uint64) int64 {
	o, ok := book.Order(id)
	if !ok {
		return 0
	}
	return o.Quantity
}
