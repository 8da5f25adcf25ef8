package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type StopState int

const (
	StopPending StopState = iota
	StopTriggered
	StopConverted
)

func (s StopState) String() string {
	switch s {
	case StopPending:
		return "pending"
	case StopTriggered:
		return "triggered"
	case StopConverted:
		return "converted"
	default:
		return "unknown"
	}
}

func (s StopState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StopOrder waits for the market price to cross TriggerPrice and is then
// converted into a limit order at LimitPrice or into a market order.
type StopOrder struct {
	ID             uint64              `json:"order_id"`
	Side           SideType            `json:"side"`
	Quantity       int64               `json:"quantity"`
	TriggerPrice   decimal.Decimal     `json:"trigger_price"`
	ConvertToLimit bool                `json:"convert_to_limit"`
	LimitPrice     decimal.NullDecimal `json:"limit_price"`
	State          StopState           `json:"state"`
	Timestamp      time.Time           `json:"timestamp"`
}

// ShouldTrigger reports whether price crosses the trigger: sell stops fire at
// or below the trigger, buy stops at or above it.
func (s *StopOrder) ShouldTrigger(price decimal.Decimal) bool {
	switch s.Side {
	case Sell:
		return price.LessThanOrEqual(s.TriggerPrice)
	case Buy:
		return price.GreaterThanOrEqual(s.TriggerPrice)
	default:
		return false
	}
}

// Convert builds the order submitted on trigger. It only reads the stop's own
// fields and marks the stop converted; a converted stop cannot be converted again.
func (s *StopOrder) Convert() *Order {
	if s.State != StopTriggered {
		panic("types: converting stop order " + s.State.String())
	}
	s.State = StopConverted
	if s.ConvertToLimit {
		return NewLimitOrder(s.ID, s.Side, s.LimitPrice.Decimal, s.Quantity)
	}
	return NewMarketOrder(s.ID, s.Side, s.Quantity)
}
