package matching

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/PxPatel/auction-book/internal/logger"
	"github.com/PxPatel/auction-book/internal/metrics"
	"github.com/PxPatel/auction-book/internal/storage"
	"github.com/PxPatel/auction-book/internal/types"
)

// LeftoverPolicy decides what a market order's unfilled remainder turns into.
type LeftoverPolicy int

const (
	// LeftoverReject returns the partial execution together with a
	// *NoLiquidityError.
	LeftoverReject LeftoverPolicy = iota
	// LeftoverReturn returns the partial execution with Remaining set and no error.
	LeftoverReturn
)

func (p LeftoverPolicy) String() string {
	if p == LeftoverReturn {
		return "return"
	}
	return "reject"
}

func ParseLeftoverPolicy(s string) (LeftoverPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return LeftoverReject, nil
	case "return":
		return LeftoverReturn, nil
	default:
		return LeftoverReject, fmt.Errorf("unknown leftover policy %q", s)
	}
}

const (
	DefaultHistoryCapacity = 1000
	DefaultVWAPDepth       = 5
	DefaultTapeCapacity    = 1000
)

type Option func(*OrderBook)

// WithEngine replaces the price-time strategy. A nil engine makes
// NewOrderBook fail with ErrEngineNotImplemented.
func WithEngine(engine Engine) Option {
	return func(b *OrderBook) { b.engine = engine }
}

// WithTradeStore sends the tape to store instead of the in-memory default.
// RecentTrades reads from it.
func WithTradeStore(store storage.TradeStore) Option {
	return func(b *OrderBook) { b.tape = store }
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(b *OrderBook) { b.metrics = recorder }
}

func WithLogger(log *logger.Logger) Option {
	return func(b *OrderBook) { b.log = log }
}

func WithLeftoverPolicy(policy LeftoverPolicy) Option {
	return func(b *OrderBook) { b.leftover = policy }
}

// WithHistoryCapacity bounds the price and spread histories.
func WithHistoryCapacity(n int) Option {
	return func(b *OrderBook) { b.historyCap = n }
}

// WithVWAPDepth sets how many best orders per side feed the VWAP. Zero
// disables it.
func WithVWAPDepth(k int) Option {
	return func(b *OrderBook) { b.vwapDepth = k }
}

// WithFirstTradeID makes trade numbering continue after last.
func WithFirstTradeID(last uint64) Option {
	return func(b *OrderBook) { b.tradeID = last }
}

func WithClock(now func() time.Time) Option {
	return func(b *OrderBook) { b.now = now }
}

// OrderBook is a single-instrument continuous auction. All operations are
// serialized by one lock; queries that only read the trees share it.
type OrderBook struct {
	mu sync.RWMutex

	engine Engine
	store  *Store
	stops  *StopMonitor
	tape   storage.TradeStore

	tradeID   uint64
	lastTrade decimal.NullDecimal

	prices     *history[MarketSnapshot]
	spreads    *history[decimal.NullDecimal]
	historyCap int
	vwapDepth  int
	leftover   LeftoverPolicy

	metrics *metrics.Recorder
	log     *logger.Logger
	now     func() time.Time
}

func NewOrderBook(opts ...Option) (*OrderBook, error) {
	b := &OrderBook{
		engine:     NewPriceTimeEngine(),
		store:      NewStore(),
		stops:      NewStopMonitor(),
		historyCap: DefaultHistoryCapacity,
		vwapDepth:  DefaultVWAPDepth,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.engine == nil {
		return nil, ErrEngineNotImplemented
	}
	if b.vwapDepth < 0 {
		return nil, fmt.Errorf("vwap depth must not be negative, got %d", b.vwapDepth)
	}
	if b.historyCap < 1 {
		return nil, fmt.Errorf("history capacity must be at least 1, got %d", b.historyCap)
	}
	if b.tape == nil {
		b.tape = storage.NewInMemoryTradeStore(DefaultTapeCapacity)
	}
	if b.log == nil {
		b.log = logger.Default()
	}
	b.prices = newHistory[MarketSnapshot](b.historyCap)
	b.spreads = newHistory[decimal.NullDecimal](b.historyCap)
	return b, nil
}

// Conversion records a stop that fired while an operation was running.
type Conversion struct {
	StopID    uint64          `json:"stop_id"`
	OrderType types.OrderType `json:"order_type"`
	Filled    int64           `json:"filled"`
	Remaining int64           `json:"remaining"`
	Resting   bool            `json:"resting"`

	order *types.Order
}

// Execution is the outcome of one submission. Trades lists every trade the
// call produced, including those of stops it triggered.
type Execution struct {
	OrderID     uint64          `json:"order_id"`
	OrderType   types.OrderType `json:"order_type"`
	Side        types.SideType  `json:"side"`
	Requested   int64           `json:"requested"`
	Filled      int64           `json:"filled"`
	Remaining   int64           `json:"remaining"`
	Resting     bool            `json:"resting"`
	Pending     bool            `json:"pending"`
	Trades      []*types.Trade  `json:"trades"`
	Conversions []Conversion    `json:"conversions,omitempty"`
}

// StopRequest describes a stop order. LimitPrice is required when
// ConvertToLimit is set and ignored otherwise.
type StopRequest struct {
	ID             uint64
	Side           types.SideType
	Quantity       int64
	TriggerPrice   decimal.Decimal
	ConvertToLimit bool
	LimitPrice     decimal.NullDecimal
}

// BookSnapshot lists live orders best first on each side.
type BookSnapshot struct {
	Bids      []types.Order `json:"bids"`
	Asks      []types.Order `json:"asks"`
	Timestamp time.Time     `json:"timestamp"`
}

// SubmitLimitOrder rests a limit order and matches the book until it is no
// longer crossed.
func (b *OrderBook) SubmitLimitOrder(id uint64, side types.SideType, price decimal.Decimal, quantity int64) (*Execution, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order := types.NewLimitOrder(id, side, price, quantity)
	order.Timestamp = b.now()
	if err := b.checkID(id); err != nil {
		return nil, b.reject(order.OrderType, err)
	}

	exec := &Execution{OrderID: id, OrderType: types.LimitOrder, Side: side, Requested: quantity}
	if err := b.placeLimit(order, exec); err != nil {
		return nil, b.reject(order.OrderType, err)
	}
	b.metrics.OrderSubmitted(order.OrderType.String())
	b.log.Debug("limit order accepted",
		zap.Uint64("order_id", id),
		zap.Stringer("side", side),
		zap.String("price", price.String()),
		zap.Int64("quantity", quantity))

	b.settle(exec)
	b.fillOutcome(order, exec)
	b.publishSize()
	return exec, nil
}

// SubmitMarketOrder sweeps the opposite side. An unfilled remainder is
// handled according to the leftover policy; it never rests.
func (b *OrderBook) SubmitMarketOrder(id uint64, side types.SideType, quantity int64) (*Execution, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order := types.NewMarketOrder(id, side, quantity)
	order.Timestamp = b.now()
	if err := b.validateMarket(order); err != nil {
		return nil, b.reject(order.OrderType, err)
	}

	exec := &Execution{OrderID: id, OrderType: types.MarketOrder, Side: side, Requested: quantity}
	remaining := b.placeMarket(order, exec)
	b.metrics.OrderSubmitted(order.OrderType.String())

	b.settle(exec)
	exec.Filled = quantity - remaining
	exec.Remaining = remaining
	b.publishSize()

	if remaining > 0 {
		b.metrics.MarketUnfilled()
		b.log.Warn("market order not fully filled",
			zap.Uint64("order_id", id),
			zap.Stringer("side", side),
			zap.Int64("requested", quantity),
			zap.Int64("remaining", remaining))
		if b.leftover == LeftoverReject {
			return exec, &NoLiquidityError{
				OrderID:   id,
				Side:      side,
				Requested: quantity,
				Remaining: remaining,
				Trades:    exec.Trades,
			}
		}
	}
	return exec, nil
}

// SubmitStopOrder registers a stop. It is checked against the current
// midpoint right away and may convert within this call.
func (b *OrderBook) SubmitStopOrder(req StopRequest) (*Execution, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stop, err := b.newStop(req)
	if err != nil {
		return nil, b.reject(types.StopOrderType, err)
	}
	if err := b.stops.Add(stop); err != nil {
		return nil, b.reject(types.StopOrderType, err)
	}
	b.metrics.OrderSubmitted(types.StopOrderType.String())
	b.log.Debug("stop order accepted",
		zap.Uint64("order_id", stop.ID),
		zap.Stringer("side", stop.Side),
		zap.String("trigger", stop.TriggerPrice.String()),
		zap.Bool("convert_to_limit", stop.ConvertToLimit))

	exec := &Execution{OrderID: req.ID, OrderType: types.StopOrderType, Side: req.Side, Requested: req.Quantity}
	b.settle(exec)

	exec.Pending = true
	exec.Remaining = req.Quantity
	for _, c := range exec.Conversions {
		if c.StopID == req.ID {
			exec.Pending = false
			exec.Filled, exec.Remaining, exec.Resting = c.Filled, c.Remaining, c.Resting
			break
		}
	}
	b.publishSize()
	return exec, nil
}

// CancelOrder removes a live limit order or a pending stop.
func (b *OrderBook) CancelOrder(id uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.store.Contains(id) {
		if _, err := b.store.Cancel(id); err != nil {
			return err
		}
		b.metrics.OrderCanceled()
		b.log.Info("order canceled", zap.Uint64("order_id", id))

		// The best quote may have moved
		b.settle(&Execution{OrderID: id})
		b.publishSize()
		return nil
	}
	if _, ok := b.stops.Cancel(id); ok {
		b.metrics.OrderCanceled()
		b.log.Info("stop order canceled", zap.Uint64("order_id", id))
		b.publishSize()
		return nil
	}
	return fmt.Errorf("cancel order %d: %w", id, ErrUnknownOrder)
}

// QueryMarketPrice recomputes the market price signals and appends them to
// the price and spread histories.
func (b *OrderBook) QueryMarketPrice() MarketSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recompute()
}

// QueryMarketDepth buckets resting quantity per side into bands of width.
func (b *OrderBook) QueryMarketDepth(width decimal.Decimal) (buy, sell []DepthBand, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return computeMarketDepth(b.store, width)
}

func (b *OrderBook) QueryBookSnapshot() BookSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := BookSnapshot{Timestamp: b.now()}
	b.store.Walk(types.Buy, func(o *types.Order) bool {
		snap.Bids = append(snap.Bids, *o)
		return true
	})
	b.store.Walk(types.Sell, func(o *types.Order) bool {
		snap.Asks = append(snap.Asks, *o)
		return true
	})
	return snap
}

// Order returns a copy of the live order registered under id.
func (b *OrderBook) Order(id uint64) (types.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.store.Lookup(id)
	if !ok {
		return types.Order{}, false
	}
	return *o, true
}

// PriceHistory returns the retained snapshots, oldest first.
func (b *OrderBook) PriceHistory() []MarketSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prices.items()
}

func (b *OrderBook) SpreadHistory() []decimal.NullDecimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.spreads.items()
}

// LastSnapshot is the most recent history entry, if any.
func (b *OrderBook) LastSnapshot() (MarketSnapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prices.last()
}

func (b *OrderBook) PendingStops() []types.StopOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stops.Pending()
}

// RecentTrades reads the tape, oldest first.
func (b *OrderBook) RecentTrades(limit int) ([]*types.Trade, error) {
	return b.tape.GetRecent(limit)
}

// Close releases the tape.
func (b *OrderBook) Close() error {
	return b.tape.Close()
}

func (b *OrderBook) checkID(id uint64) error {
	if b.store.Contains(id) || b.stops.Contains(id) {
		return invalid(id, "order_id", ErrDuplicateOrder)
	}
	return nil
}

func (b *OrderBook) validateMarket(o *types.Order) error {
	if !o.Side.Valid() {
		return invalid(o.ID, "side", ErrInvalidSide)
	}
	if o.Quantity <= 0 {
		return invalid(o.ID, "quantity", ErrInvalidQuantity)
	}
	return b.checkID(o.ID)
}

func (b *OrderBook) newStop(req StopRequest) (*types.StopOrder, error) {
	if !req.Side.Valid() {
		return nil, invalid(req.ID, "side", ErrInvalidSide)
	}
	if req.Quantity <= 0 {
		return nil, invalid(req.ID, "quantity", ErrInvalidQuantity)
	}
	if !req.TriggerPrice.IsPositive() {
		return nil, invalid(req.ID, "trigger_price", ErrInvalidPrice)
	}
	limit := decimal.NullDecimal{}
	if req.ConvertToLimit {
		if !req.LimitPrice.Valid {
			return nil, invalid(req.ID, "limit_price", ErrMissingLimitPrice)
		}
		if !req.LimitPrice.Decimal.IsPositive() {
			return nil, invalid(req.ID, "limit_price", ErrInvalidPrice)
		}
		limit = req.LimitPrice
	}
	if err := b.checkID(req.ID); err != nil {
		return nil, err
	}
	return &types.StopOrder{
		ID:             req.ID,
		Side:           req.Side,
		Quantity:       req.Quantity,
		TriggerPrice:   req.TriggerPrice,
		ConvertToLimit: req.ConvertToLimit,
		LimitPrice:     limit,
		Timestamp:      b.now(),
	}, nil
}

func (b *OrderBook) reject(orderType types.OrderType, err error) error {
	b.metrics.OrderRejected(orderType.String())
	b.log.Debug("order rejected", zap.Stringer("type", orderType), zap.Error(err))
	return err
}

// placeLimit inserts and runs the continuous match. It does not evaluate stops.
func (b *OrderBook) placeLimit(order *types.Order, exec *Execution) error {
	order.Seq = b.store.NextSeq()
	if err := b.store.Insert(order); err != nil {
		return err
	}
	b.record(b.engine.Match(b.store), exec)
	return nil
}

// placeMarket sweeps the opposite side and returns the unfilled quantity.
func (b *OrderBook) placeMarket(order *types.Order, exec *Execution) int64 {
	order.Seq = b.store.NextSeq()

	var leftover *types.Order
	var trades []*types.Trade
	if order.Side == types.Buy {
		leftover, trades = b.engine.MatchMarketBuy(order, b.store)
	} else {
		leftover, trades = b.engine.MatchMarketSell(order, b.store)
	}
	b.record(trades, exec)
	return leftover.Quantity
}

// record numbers trades, tracks the last price and appends them to the tape.
// A failing tape is logged; the book state has already moved on.
func (b *OrderBook) record(trades []*types.Trade, exec *Execution) {
	if len(trades) == 0 {
		return
	}
	for _, t := range trades {
		b.tradeID++
		t.TradeID = b.tradeID
		b.lastTrade = decimal.NewNullDecimal(t.Price)
		b.metrics.TradeExecuted(t.Quantity)
	}
	exec.Trades = append(exec.Trades, trades...)

	if err := b.tape.SaveBatch(trades); err != nil {
		b.log.Warn("failed to append trades to tape",
			zap.Int("count", len(trades)),
			zap.Uint64("last_trade_id", b.tradeID),
			zap.Error(err))
	}
}

func (b *OrderBook) recompute() MarketSnapshot {
	snap := computeMarketPrice(b.store, b.lastTrade, b.vwapDepth, b.now())
	b.prices.append(snap)
	b.spreads.append(snap.Spread)
	return snap
}

// settle recomputes the market price and converts every stop it triggers,
// repeating until a recomputation fires nothing.
func (b *OrderBook) settle(exec *Execution) {
	for {
		snap := b.recompute()
		fired := b.stops.Evaluate(snap.Midpoint)
		if len(fired) == 0 {
			return
		}
		for _, stop := range fired {
			exec.Conversions = append(exec.Conversions, b.convert(stop, snap.Midpoint.Decimal, exec))
		}
		b.refreshConversions(exec)
	}
}

// refreshConversions rereads converted limit orders, which later conversions
// in the same cascade may have traded against.
func (b *OrderBook) refreshConversions(exec *Execution) {
	for i := range exec.Conversions {
		c := &exec.Conversions[i]
		if c.order == nil {
			continue
		}
		total := c.Filled + c.Remaining
		c.Remaining = c.order.Quantity
		c.Filled = total - c.order.Quantity
		c.Resting = c.order.IsLive() && b.store.Contains(c.order.ID)
	}
}

func (b *OrderBook) convert(stop *types.StopOrder, midpoint decimal.Decimal, exec *Execution) Conversion {
	b.metrics.StopTriggered()
	order := stop.Convert()
	order.Timestamp = b.now()
	b.log.Info("stop order triggered",
		zap.Uint64("order_id", stop.ID),
		zap.Stringer("side", stop.Side),
		zap.String("trigger", stop.TriggerPrice.String()),
		zap.String("midpoint", midpoint.String()),
		zap.Stringer("converted_to", order.OrderType))

	c := Conversion{StopID: stop.ID, OrderType: order.OrderType}
	if order.OrderType == types.LimitOrder {
		if err := b.placeLimit(order, exec); err != nil {
			b.log.Error("converted stop rejected", zap.Uint64("order_id", stop.ID), zap.Error(err))
			c.Remaining = stop.Quantity
			return c
		}
		c.order = order
		c.Remaining = order.Quantity
		c.Filled = stop.Quantity - order.Quantity
		c.Resting = order.IsLive()
		return c
	}

	remaining := b.placeMarket(order, exec)
	c.Filled = stop.Quantity - remaining
	c.Remaining = remaining
	if remaining > 0 {
		b.metrics.MarketUnfilled()
		b.log.Warn("triggered stop not fully filled",
			zap.Uint64("order_id", stop.ID),
			zap.Int64("remaining", remaining))
	}
	return c
}

// fillOutcome reads back a limit order after all cascades ran. A filled or
// canceled order has zero quantity.
func (b *OrderBook) fillOutcome(order *types.Order, exec *Execution) {
	exec.Remaining = order.Quantity
	exec.Filled = exec.Requested - order.Quantity
	exec.Resting = order.IsLive() && b.store.Contains(order.ID)
}

func (b *OrderBook) publishSize() {
	b.metrics.SetBookSize(b.store.LiveCount(types.Buy), b.store.LiveCount(types.Sell), b.stops.Len())
}
