package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents one execution between a resting maker and a taker.
// Trades are immutable once appended to the tape.
type Trade struct {
	TradeID      uint64          `json:"trade_id,omitempty"`
	MakerOrderID uint64          `json:"maker_order_id"`
	MakerType    OrderType       `json:"maker_order_type"`
	TakerOrderID uint64          `json:"taker_order_id"`
	TakerType    OrderType       `json:"taker_order_type"`
	TakerSide    SideType        `json:"taker_side"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	Timestamp    time.Time       `json:"timestamp"`
}

func (t *Trade) BuyOrderID() uint64 {
	if t.TakerSide == Buy {
		return t.TakerOrderID
	}
	return t.MakerOrderID
}

func (t *Trade) SellOrderID() uint64 {
	if t.TakerSide == Sell {
		return t.TakerOrderID
	}
	return t.MakerOrderID
}

// Notional is price times quantity.
func (t *Trade) Notional() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}
