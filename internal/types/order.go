package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderType int

const (
	NoActionOrder OrderType = iota
	LimitOrder
	MarketOrder
	StopOrderType
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "limit"
	case MarketOrder:
		return "market"
	case StopOrderType:
		return "stop"
	default:
		return "none"
	}
}

func (t OrderType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *OrderType) UnmarshalText(b []byte) error {
	parsed, err := ParseOrderType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseOrderType accepts "limit", "market" or "stop" in any case.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "limit":
		return LimitOrder, nil
	case "market":
		return MarketOrder, nil
	case "stop":
		return StopOrderType, nil
	default:
		return NoActionOrder, fmt.Errorf("unknown order type %q", s)
	}
}

type SideType int

const (
	NoActionSide SideType = iota
	Buy
	Sell
)

func (s SideType) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "none"
	}
}

// Opposite returns the side an order of this side trades against.
func (s SideType) Opposite() SideType {
	switch s {
	case Buy:
		return Sell
	case Sell:
		return Buy
	default:
		return NoActionSide
	}
}

func (s SideType) Valid() bool {
	return s == Buy || s == Sell
}

func (s SideType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SideType) UnmarshalText(b []byte) error {
	parsed, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSide accepts "buy" or "sell" in any case.
func ParseSide(s string) (SideType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return NoActionSide, fmt.Errorf("unknown side %q", s)
	}
}

// Order is a live limit order or a transient market taker.
// A quantity of zero marks the order dead (filled or canceled).
type Order struct {
	ID        uint64          `json:"order_id"`
	OrderType OrderType       `json:"order_type"`
	Side      SideType        `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Seq       uint64          `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewLimitOrder(id uint64, side SideType, price decimal.Decimal, quantity int64) *Order {
	return &Order{
		ID:        id,
		OrderType: LimitOrder,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Timestamp: time.Now(),
	}
}

// NewMarketOrder builds a priceless taker. Market orders never rest.
func NewMarketOrder(id uint64, side SideType, quantity int64) *Order {
	return &Order{
		ID:        id,
		OrderType: MarketOrder,
		Side:      side,
		Quantity:  quantity,
		Timestamp: time.Now(),
	}
}

func (o *Order) IsLive() bool {
	return o.Quantity > 0
}

func (o *Order) Clone() *Order {
	cp := *o
	return &cp
}

func (o *Order) String() string {
	if o.OrderType == MarketOrder {
		return fmt.Sprintf("[ID:%d %s %s qty:%d]", o.ID, o.OrderType, o.Side, o.Quantity)
	}
	return fmt.Sprintf("[ID:%d %s %s %d@%s]", o.ID, o.OrderType, o.Side, o.Quantity, o.Price)
}
