package matching

import "github.com/PxPatel/auction-book/internal/types"

// Re-export types so callers of the book rarely need the types package
type (
	OrderType = types.OrderType
	SideType  = types.SideType
	Order     = types.Order
	StopOrder = types.StopOrder
	Trade     = types.Trade
)

const (
	LimitOrder    = types.LimitOrder
	MarketOrder   = types.MarketOrder
	StopOrderType = types.StopOrderType

	Buy  = types.Buy
	Sell = types.Sell
)

var (
	NewLimitOrder  = types.NewLimitOrder
	NewMarketOrder = types.NewMarketOrder
)
