package matching

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/auction-book/internal/matching"
	"github.com/PxPatel/auction-book/internal/storage"
)

// TestCrossingLimitOrders covers a sell limit crossing a resting buy
func TestCrossingLimitOrders(t *testing.T) {
	book := newBook(t)

	mustLimit(t, book, 1, matching.Buy, "100", 10)
	exec := mustLimit(t, book, 2, matching.Sell, "99", 5)

	if len(exec.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(exec.Trades))
	}
	trade := exec.Trades[0]
	if trade.Quantity != 5 {
		t.Errorf("Expected trade quantity 5, got %d", trade.Quantity)
	}
	if !trade.Price.Equal(d("100")) {
		t.Errorf("Expected trade at resting price 100, got %s", trade.Price)
	}
	if trade.MakerOrderID != 1 || trade.TakerOrderID != 2 {
		t.Errorf("Expected maker 1 and taker 2, got maker %d taker %d", trade.MakerOrderID, trade.TakerOrderID)
	}
	if trade.BuyOrderID() != 1 || trade.SellOrderID() != 2 {
		t.Errorf("Trade order IDs incorrect: buy=%d, sell=%d", trade.BuyOrderID(), trade.SellOrderID())
	}

	if got := liveQuantity(book, 1); got != 5 {
		t.Errorf("Expected buy order 1 to keep 5, got %d", got)
	}
	if _, ok := book.Order(2); ok {
		t.Error("Expected sell order 2 to be removed")
	}
	if exec.Filled != 5 || exec.Remaining != 0 || exec.Resting {
		t.Errorf("Unexpected execution outcome: %+v", exec)
	}
}

// TestRestingOrderSetsPrice checks that the earlier order's price is used even
// when the sell side arrived first
func TestRestingOrderSetsPrice(t *testing.T) {
	book := newBook(t)

	mustLimit(t, book, 1, matching.Sell, "99", 5)
	exec := mustLimit(t, book, 2, matching.Buy, "101", 8)

	if len(exec.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(exec.Trades))
	}
	if !exec.Trades[0].Price.Equal(d("99")) {
		t.Errorf("Expected trade at 99, got %s", exec.Trades[0].Price)
	}
	if exec.Trades[0].TakerSide != matching.Buy {
		t.Errorf("Expected buy taker, got %s", exec.Trades[0].TakerSide)
	}
	if !exec.Resting || exec.Remaining != 3 || exec.Filled != 5 {
		t.Errorf("Expected 3 left resting after filling 5, got %+v", exec)
	}
}

func TestCancelUnknownOrder(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "100", 10)
	before := book.QueryBookSnapshot()

	err := book.CancelOrder(99)
	if !errors.Is(err, matching.ErrUnknownOrder) {
		t.Fatalf("Expected ErrUnknownOrder, got %v", err)
	}

	after := book.QueryBookSnapshot()
	if len(after.Bids) != len(before.Bids) || after.Bids[0].Quantity != 10 {
		t.Errorf("Book changed after failed cancel: %+v", after)
	}
}

func TestMarketOrderAgainstEmptyBook(t *testing.T) {
	book := newBook(t)

	exec, err := book.SubmitMarketOrder(3, matching.Buy, 20)

	var nerr *matching.NoLiquidityError
	if !errors.As(err, &nerr) {
		t.Fatalf("Expected NoLiquidityError, got %v", err)
	}
	if !errors.Is(err, matching.ErrNoLiquidity) {
		t.Error("NoLiquidityError should unwrap to ErrNoLiquidity")
	}
	if nerr.Remaining != 20 || nerr.Requested != 20 {
		t.Errorf("Expected 20 of 20 unfilled, got %d of %d", nerr.Remaining, nerr.Requested)
	}
	if exec == nil || len(exec.Trades) != 0 || exec.Remaining != 20 {
		t.Errorf("Expected empty execution with 20 remaining, got %+v", exec)
	}
}

func TestMarketOrderLeftoverReturned(t *testing.T) {
	book := newBook(t, matching.WithLeftoverPolicy(matching.LeftoverReturn))
	mustLimit(t, book, 1, matching.Sell, "101", 4)

	exec, err := book.SubmitMarketOrder(2, matching.Buy, 10)
	if err != nil {
		t.Fatalf("Expected no error with LeftoverReturn, got %v", err)
	}
	if exec.Filled != 4 || exec.Remaining != 6 {
		t.Errorf("Expected 4 filled and 6 remaining, got %+v", exec)
	}
	if exec.Resting {
		t.Error("Market order remainder must never rest")
	}
	if _, ok := book.Order(2); ok {
		t.Error("Market order should not be registered")
	}
}

func TestMarketOrderSweepsLevels(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Sell, "101", 10)
	mustLimit(t, book, 2, matching.Sell, "102", 20)
	mustLimit(t, book, 3, matching.Sell, "103", 15)

	exec, err := book.SubmitMarketOrder(100, matching.Buy, 25)
	if err != nil {
		t.Fatalf("SubmitMarketOrder() error = %v", err)
	}
	if len(exec.Trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(exec.Trades))
	}
	if !exec.Trades[0].Price.Equal(d("101")) || exec.Trades[0].Quantity != 10 {
		t.Errorf("First trade wrong: %+v", exec.Trades[0])
	}
	if !exec.Trades[1].Price.Equal(d("102")) || exec.Trades[1].Quantity != 15 {
		t.Errorf("Second trade wrong: %+v", exec.Trades[1])
	}
	if got := liveQuantity(book, 2); got != 5 {
		t.Errorf("Expected 5 left on order 2, got %d", got)
	}
}

func TestDepthBands(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "100.3", 4)
	mustLimit(t, book, 2, matching.Buy, "100.7", 6)

	buy, sell, err := book.QueryMarketDepth(d("1.0"))
	if err != nil {
		t.Fatalf("QueryMarketDepth() error = %v", err)
	}
	if len(sell) != 0 {
		t.Errorf("Expected no sell bands, got %d", len(sell))
	}
	if len(buy) != 1 {
		t.Fatalf("Expected 1 buy band, got %d", len(buy))
	}
	band := buy[0]
	if !band.Low.Equal(d("100")) || !band.High.Equal(d("101")) || !band.Quantity.Equal(d("10")) {
		t.Errorf("Expected band [100, 101] with 10, got [%s, %s] with %s", band.Low, band.High, band.Quantity)
	}
}

// TestMarketDataWithHugeQuantities keeps band totals and VWAP exact when the
// resting quantities sum past MaxInt64
func TestMarketDataWithHugeQuantities(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "100", math.MaxInt64)
	mustLimit(t, book, 2, matching.Buy, "99", math.MaxInt64)

	buy, _, err := book.QueryMarketDepth(d("1000"))
	if err != nil {
		t.Fatalf("QueryMarketDepth() error = %v", err)
	}
	if len(buy) != 1 {
		t.Fatalf("Expected 1 buy band, got %d", len(buy))
	}
	want := decimal.NewFromInt(math.MaxInt64).Mul(decimal.NewFromInt(2))
	if !buy[0].Quantity.Equal(want) {
		t.Errorf("Expected band quantity %s, got %s", want, buy[0].Quantity)
	}

	price := book.QueryMarketPrice()
	if !price.VWAP.Valid || !price.VWAP.Decimal.Equal(d("99.5")) {
		t.Errorf("Expected VWAP 99.5, got %v", price.VWAP)
	}
}

func TestDepthRejectsNonPositiveWidth(t *testing.T) {
	book := newBook(t)
	for _, w := range []string{"0", "-1"} {
		if _, _, err := book.QueryMarketDepth(d(w)); !errors.Is(err, matching.ErrInvalidBandWidth) {
			t.Errorf("width %s: expected ErrInvalidBandWidth, got %v", w, err)
		}
	}
}

func TestTimePriorityAtSamePrice(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "100", 10)
	mustLimit(t, book, 2, matching.Buy, "100", 10)

	exec := mustLimit(t, book, 3, matching.Sell, "100", 10)
	if len(exec.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(exec.Trades))
	}
	if exec.Trades[0].MakerOrderID != 1 {
		t.Errorf("Expected earlier order 1 to fill first, got %d", exec.Trades[0].MakerOrderID)
	}
	if _, ok := book.Order(1); ok {
		t.Error("Order 1 should be filled")
	}
	if got := liveQuantity(book, 2); got != 10 {
		t.Errorf("Order 2 should be untouched, has %d", got)
	}
}

func TestCanceledOrderNeverMatches(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "101", 10)
	mustLimit(t, book, 2, matching.Buy, "100", 10)

	if err := book.CancelOrder(1); err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}

	exec := mustLimit(t, book, 3, matching.Sell, "99", 5)
	if len(exec.Trades) != 1 || exec.Trades[0].MakerOrderID != 2 {
		t.Fatalf("Expected fill against order 2 only, got %+v", exec.Trades)
	}
	if !exec.Trades[0].Price.Equal(d("100")) {
		t.Errorf("Expected trade at 100, got %s", exec.Trades[0].Price)
	}
}

func TestCanceledIDCanBeReused(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "105", 10)
	if err := book.CancelOrder(1); err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}
	mustLimit(t, book, 1, matching.Buy, "90", 3)

	snap := book.QueryBookSnapshot()
	if len(snap.Bids) != 1 {
		t.Fatalf("Expected a single live bid, got %d", len(snap.Bids))
	}
	if !snap.Bids[0].Price.Equal(d("90")) || snap.Bids[0].Quantity != 3 {
		t.Errorf("Stale handle leaked into snapshot: %+v", snap.Bids[0])
	}

	exec := mustLimit(t, book, 2, matching.Sell, "95", 1)
	if len(exec.Trades) != 0 {
		t.Errorf("Canceled order at 105 must not trade, got %+v", exec.Trades)
	}
}

func TestSubmitValidation(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "100", 1)

	tests := []struct {
		name   string
		submit func() error
		want   error
		field  string
	}{
		{"zero price", func() error {
			_, err := book.SubmitLimitOrder(2, matching.Buy, d("0"), 1)
			return err
		}, matching.ErrInvalidPrice, "price"},
		{"negative quantity", func() error {
			_, err := book.SubmitLimitOrder(2, matching.Buy, d("1"), -1)
			return err
		}, matching.ErrInvalidQuantity, "quantity"},
		{"bad side", func() error {
			_, err := book.SubmitLimitOrder(2, matching.SideType(9), d("1"), 1)
			return err
		}, matching.ErrInvalidSide, "side"},
		{"duplicate limit", func() error {
			_, err := book.SubmitLimitOrder(1, matching.Sell, d("200"), 1)
			return err
		}, matching.ErrDuplicateOrder, "order_id"},
		{"duplicate market", func() error {
			_, err := book.SubmitMarketOrder(1, matching.Sell, 1)
			return err
		}, matching.ErrDuplicateOrder, "order_id"},
		{"zero market quantity", func() error {
			_, err := book.SubmitMarketOrder(3, matching.Sell, 0)
			return err
		}, matching.ErrInvalidQuantity, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.submit()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			var verr *matching.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("Expected ValidationError on %q, got %v", tt.field, err)
			}
		})
	}

	if got := liveQuantity(book, 1); got != 1 {
		t.Errorf("Rejected submissions changed order 1: %d", got)
	}
}

func TestMarketPriceSignals(t *testing.T) {
	book := newBook(t)

	snap := book.QueryMarketPrice()
	if snap.Midpoint.Valid || snap.VWAP.Valid || snap.LastTrade.Valid || snap.Spread.Valid {
		t.Errorf("Empty book should have no price signals: %+v", snap)
	}

	mustLimit(t, book, 1, matching.Buy, "99", 10)
	snap = book.QueryMarketPrice()
	if snap.Midpoint.Valid {
		t.Error("Midpoint must be absent with one side empty")
	}
	if !snap.VWAP.Valid || !snap.VWAP.Decimal.Equal(d("99")) {
		t.Errorf("Expected VWAP 99 from the bid side, got %+v", snap.VWAP)
	}

	mustLimit(t, book, 2, matching.Sell, "101", 30)
	snap = book.QueryMarketPrice()
	if !snap.Midpoint.Valid || !snap.Midpoint.Decimal.Equal(d("100")) {
		t.Errorf("Expected midpoint 100, got %+v", snap.Midpoint)
	}
	if !snap.Spread.Valid || !snap.Spread.Decimal.Equal(d("2")) {
		t.Errorf("Expected spread 2, got %+v", snap.Spread)
	}
	// (99*10 + 101*30) / 40
	if !snap.VWAP.Decimal.Equal(d("100.5")) {
		t.Errorf("Expected VWAP 100.5, got %s", snap.VWAP.Decimal)
	}

	mustLimit(t, book, 3, matching.Sell, "99", 4)
	snap = book.QueryMarketPrice()
	if !snap.LastTrade.Valid || !snap.LastTrade.Decimal.Equal(d("99")) {
		t.Errorf("Expected last trade 99, got %+v", snap.LastTrade)
	}
}

func TestVWAPUsesTopOrdersOnly(t *testing.T) {
	book := newBook(t, matching.WithVWAPDepth(1))
	mustLimit(t, book, 1, matching.Buy, "90", 100)
	mustLimit(t, book, 2, matching.Buy, "99", 1)
	mustLimit(t, book, 3, matching.Sell, "101", 1)
	mustLimit(t, book, 4, matching.Sell, "110", 100)

	snap := book.QueryMarketPrice()
	if !snap.VWAP.Decimal.Equal(d("100")) {
		t.Errorf("Expected VWAP over best bid and ask only (100), got %s", snap.VWAP.Decimal)
	}
}

func TestHistoriesAreBounded(t *testing.T) {
	book := newBook(t, matching.WithHistoryCapacity(3))
	for i := 0; i < 10; i++ {
		book.QueryMarketPrice()
	}
	if got := len(book.PriceHistory()); got != 3 {
		t.Errorf("Expected 3 retained prices, got %d", got)
	}
	if got := len(book.SpreadHistory()); got != 3 {
		t.Errorf("Expected 3 retained spreads, got %d", got)
	}
}

func TestQueryMarketPriceAppendsHistory(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "99", 1)
	before := len(book.PriceHistory())

	book.QueryMarketPrice()
	book.QueryMarketPrice()

	if got := len(book.PriceHistory()); got != before+2 {
		t.Errorf("Expected %d history entries, got %d", before+2, got)
	}
	last, ok := book.LastSnapshot()
	if !ok || last.Midpoint.Valid {
		t.Errorf("Unexpected last snapshot %+v", last)
	}
}

func TestTradeIDsAndTape(t *testing.T) {
	tape := storage.NewInMemoryTradeStore(10)
	book := newBook(t, matching.WithTradeStore(tape), matching.WithFirstTradeID(41))

	mustLimit(t, book, 1, matching.Sell, "100", 1)
	mustLimit(t, book, 2, matching.Sell, "101", 1)
	exec := mustLimit(t, book, 3, matching.Buy, "101", 2)

	if len(exec.Trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(exec.Trades))
	}
	if exec.Trades[0].TradeID != 42 || exec.Trades[1].TradeID != 43 {
		t.Errorf("Expected trade ids 42 and 43, got %d and %d", exec.Trades[0].TradeID, exec.Trades[1].TradeID)
	}

	recent, err := book.RecentTrades(10)
	if err != nil {
		t.Fatalf("RecentTrades() error = %v", err)
	}
	if len(recent) != 2 || recent[0].TradeID != 42 {
		t.Errorf("Tape should hold both trades oldest first, got %+v", recent)
	}
	if tape.Len() != 2 {
		t.Errorf("Expected 2 trades on the tape, got %d", tape.Len())
	}
}

func TestSnapshotIsPriorityOrdered(t *testing.T) {
	book := newBook(t)
	mustLimit(t, book, 1, matching.Buy, "99", 1)
	mustLimit(t, book, 2, matching.Buy, "100", 1)
	mustLimit(t, book, 3, matching.Buy, "100", 1)
	mustLimit(t, book, 4, matching.Sell, "102", 1)
	mustLimit(t, book, 5, matching.Sell, "101", 1)

	snap := book.QueryBookSnapshot()
	wantBids := []uint64{2, 3, 1}
	wantAsks := []uint64{5, 4}
	for i, id := range wantBids {
		if snap.Bids[i].ID != id {
			t.Errorf("bid %d: expected order %d, got %d", i, id, snap.Bids[i].ID)
		}
	}
	for i, id := range wantAsks {
		if snap.Asks[i].ID != id {
			t.Errorf("ask %d: expected order %d, got %d", i, id, snap.Asks[i].ID)
		}
	}

	// Snapshot entries are copies
	snap.Bids[0].Quantity = 1000
	if got := liveQuantity(book, 2); got != 1 {
		t.Errorf("Snapshot mutation leaked into the book: %d", got)
	}
}

func TestNilEngineRejected(t *testing.T) {
	_, err := matching.NewOrderBook(matching.WithEngine(nil))
	if !errors.Is(err, matching.ErrEngineNotImplemented) {
		t.Errorf("Expected ErrEngineNotImplemented, got %v", err)
	}
}

func TestParseLeftoverPolicy(t *testing.T) {
	for in, want := range map[string]matching.LeftoverPolicy{
		"":       matching.LeftoverReject,
		"reject": matching.LeftoverReject,
		"Return": matching.LeftoverReturn,
	} {
		got, err := matching.ParseLeftoverPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseLeftoverPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := matching.ParseLeftoverPolicy("rest"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
