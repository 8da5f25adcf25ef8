package matching

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/auction-book/internal/types"
)

var two = decimal.NewFromInt(2)

// MarketSnapshot is one reading of the derived market price signals.
// Absent values are encoded as invalid NullDecimals.
type MarketSnapshot struct {
	Midpoint  decimal.NullDecimal `json:"midpoint"`
	VWAP      decimal.NullDecimal `json:"vwap"`
	LastTrade decimal.NullDecimal `json:"last_trade"`
	Spread    decimal.NullDecimal `json:"spread"`
	Timestamp time.Time           `json:"timestamp"`
}

// DepthBand aggregates resting quantity whose price falls in [Low, High].
// Quantity is a decimal: a band's total may exceed MaxInt64.
type DepthBand struct {
	Low      decimal.Decimal `json:"low"`
	High     decimal.Decimal `json:"high"`
	Quantity decimal.Decimal `json:"quantity"`
}

// computeMarketPrice reads the store without mutating it. The VWAP sample is
// the vwapDepth best live orders of each side.
func computeMarketPrice(store *Store, lastTrade decimal.NullDecimal, vwapDepth int, now time.Time) MarketSnapshot {
	snap := MarketSnapshot{LastTrade: lastTrade, Timestamp: now}

	bids := store.Top(types.Buy, max(vwapDepth, 1))
	asks := store.Top(types.Sell, max(vwapDepth, 1))

	if len(bids) > 0 && len(asks) > 0 {
		bestBid, bestAsk := bids[0].Price, asks[0].Price
		snap.Midpoint = decimal.NewNullDecimal(bestBid.Add(bestAsk).Div(two))
		snap.Spread = decimal.NewNullDecimal(bestAsk.Sub(bestBid))
	}

	if vwapDepth > 0 {
		snap.VWAP = vwap(append(limitTo(bids, vwapDepth), limitTo(asks, vwapDepth)...))
	}
	return snap
}

func limitTo(orders []*types.Order, k int) []*types.Order {
	if len(orders) > k {
		return orders[:k]
	}
	return orders
}

func vwap(sample []*types.Order) decimal.NullDecimal {
	value, quantity := decimal.Zero, decimal.Zero
	for _, o := range sample {
		q := decimal.NewFromInt(o.Quantity)
		value = value.Add(o.Price.Mul(q))
		quantity = quantity.Add(q)
	}
	if !quantity.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(value.Div(quantity))
}

// bandOf returns [floor(p/w)*w, ceil(p/w)*w]. A price sitting exactly on a
// multiple of w gets a zero-width band.
func bandOf(price, width decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	steps := price.Div(width)
	return steps.Floor().Mul(width), steps.Ceil().Mul(width)
}

func computeMarketDepth(store *Store, width decimal.Decimal) ([]DepthBand, []DepthBand, error) {
	if !width.IsPositive() {
		return nil, nil, ErrInvalidBandWidth
	}
	return depthOf(store, types.Buy, width), depthOf(store, types.Sell, width), nil
}

func depthOf(store *Store, side types.SideType, width decimal.Decimal) []DepthBand {
	byLow := make(map[string]*DepthBand)
	store.Walk(side, func(o *types.Order) bool {
		low, high := bandOf(o.Price, width)
		key := low.String() + "/" + high.String()
		band, ok := byLow[key]
		if !ok {
			band = &DepthBand{Low: low, High: high, Quantity: decimal.Zero}
			byLow[key] = band
		}
		band.Quantity = band.Quantity.Add(decimal.NewFromInt(o.Quantity))
		return true
	})

	bands := make([]DepthBand, 0, len(byLow))
	for _, b := range byLow {
		bands = append(bands, *b)
	}
	sort.Slice(bands, func(i, j int) bool {
		if c := bands[i].Low.Cmp(bands[j].Low); c != 0 {
			return c < 0
		}
		return bands[i].High.LessThan(bands[j].High)
	})
	return bands
}

// history is a fixed-capacity ring that keeps the newest entries.
type history[T any] struct {
	buf   []T
	start int
	size  int
}

func newHistory[T any](capacity int) *history[T] {
	return &history[T]{buf: make([]T, max(capacity, 1))}
}

func (h *history[T]) append(v T) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = v
		h.size++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

func (h *history[T]) last() (T, bool) {
	var zero T
	if h.size == 0 {
		return zero, false
	}
	return h.buf[(h.start+h.size-1)%len(h.buf)], true
}

func (h *history[T]) len() int { return h.size }

// items returns the retained entries, oldest first.
func (h *history[T]) items() []T {
	out := make([]T, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
