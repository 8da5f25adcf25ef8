package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/PxPatel/auction-book/internal/types"
)

// Engine is a matching strategy. The book only depends on this interface.
type Engine interface {
	// Match crosses resting bids and asks until the book is no longer crossed.
	Match(store *Store) []*types.Trade

	// MatchMarketBuy executes a market buy against the ask side. The returned
	// order carries whatever quantity could not be filled.
	MatchMarketBuy(order *types.Order, store *Store) (*types.Order, []*types.Trade)

	// MatchMarketSell executes a market sell against the bid side.
	MatchMarketSell(order *types.Order, store *Store) (*types.Order, []*types.Trade)
}

const PriceTimeEngineName = "price-time"

// NewEngine resolves a strategy by name. An empty name selects price-time.
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PriceTimeEngineName:
		return NewPriceTimeEngine(), nil
	default:
		return nil, fmt.Errorf("engine %q: %w", name, ErrEngineNotImplemented)
	}
}

// PriceTimeEngine matches by best price, then earliest arrival.
//
// Every trade prints at the maker's price. In a continuous cross the maker is
// whichever of the two orders arrived first; a market order is always the taker.
type PriceTimeEngine struct {
	now func() time.Time
}

func NewPriceTimeEngine() *PriceTimeEngine {
	return &PriceTimeEngine{now: time.Now}
}

func (e *PriceTimeEngine) Match(store *Store) []*types.Trade {
	var trades []*types.Trade

	for {
		bid, hasBid := store.PeekBest(types.Buy)
		ask, hasAsk := store.PeekBest(types.Sell)
		if !hasBid || !hasAsk || bid.Price.LessThan(ask.Price) {
			return trades
		}

		maker, taker := bid, ask
		if ask.Seq < bid.Seq {
			maker, taker = ask, bid
		}
		trades = append(trades, e.execute(maker, taker))

		// Both can be filled by the same trade
		if bid.Quantity == 0 {
			store.retire(bid)
		}
		if ask.Quantity == 0 {
			store.retire(ask)
		}
	}
}

func (e *PriceTimeEngine) MatchMarketBuy(order *types.Order, store *Store) (*types.Order, []*types.Trade) {
	return e.matchMarket(order, types.Buy, store)
}

func (e *PriceTimeEngine) MatchMarketSell(order *types.Order, store *Store) (*types.Order, []*types.Trade) {
	return e.matchMarket(order, types.Sell, store)
}

func (e *PriceTimeEngine) matchMarket(order *types.Order, side types.SideType, store *Store) (*types.Order, []*types.Trade) {
	if order.OrderType != types.MarketOrder || order.Side != side {
		panic(fmt.Sprintf("matching: %s passed as market %s", order, side))
	}

	var trades []*types.Trade
	leftover := order.Clone()

	for leftover.Quantity > 0 {
		maker, ok := store.PeekBest(side.Opposite())
		if !ok {
			break
		}
		trades = append(trades, e.execute(maker, leftover))
		if maker.Quantity == 0 {
			store.retire(maker)
		}
	}

	return leftover, trades
}

// execute fills min(maker, taker) at the maker's price and decrements both.
func (e *PriceTimeEngine) execute(maker, taker *types.Order) *types.Trade {
	if maker.OrderType != types.LimitOrder {
		panic(fmt.Sprintf("matching: maker %s is not a resting limit order", maker))
	}
	if !maker.IsLive() || !taker.IsLive() {
		panic(fmt.Sprintf("matching: trading dead order (maker %s, taker %s)", maker, taker))
	}

	size := min(maker.Quantity, taker.Quantity)
	maker.Quantity -= size
	taker.Quantity -= size

	return &types.Trade{
		MakerOrderID: maker.ID,
		MakerType:    maker.OrderType,
		TakerOrderID: taker.ID,
		TakerType:    taker.OrderType,
		TakerSide:    taker.Side,
		Price:        maker.Price,
		Quantity:     size,
		Timestamp:    e.now(),
	}
}
