package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseResponse is the base structure for all API responses
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// TradeDTO represents a trade in API responses
type TradeDTO struct {
	TradeID      uint64          `json:"trade_id"`
	BuyOrderID   uint64          `json:"buy_order_id"`
	SellOrderID  uint64          `json:"sell_order_id"`
	MakerOrderID uint64          `json:"maker_order_id"`
	TakerOrderID uint64          `json:"taker_order_id"`
	TakerSide    string          `json:"taker_side"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ConversionDTO describes a stop order that fired during a request
type ConversionDTO struct {
	StopID    uint64 `json:"stop_id"`
	OrderType string `json:"order_type"`
	Filled    int64  `json:"filled"`
	Remaining int64  `json:"remaining"`
	Resting   bool   `json:"resting"`
}

// ExecutionDTO is the outcome of one submission
type ExecutionDTO struct {
	OrderID     uint64          `json:"order_id"`
	OrderType   string          `json:"order_type"`
	Side        string          `json:"side"`
	Requested   int64           `json:"requested"`
	Filled      int64           `json:"filled"`
	Remaining   int64           `json:"remaining"`
	Resting     bool            `json:"resting"`
	Pending     bool            `json:"pending"`
	Trades      []TradeDTO      `json:"trades"`
	Conversions []ConversionDTO `json:"conversions,omitempty"`
}

// SubmitOrderResponse represents the response for order submission
type SubmitOrderResponse struct {
	BaseResponse
	Execution *ExecutionDTO `json:"execution,omitempty"`
}

// CancelOrderResponse represents the response for order cancellation
type CancelOrderResponse struct {
	BaseResponse
	OrderID uint64 `json:"order_id,omitempty"`
}

// OrderDTO represents a live order in API responses
type OrderDTO struct {
	OrderID   uint64          `json:"order_id"`
	OrderType string          `json:"order_type"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Timestamp time.Time       `json:"timestamp"`
}

// GetOrderResponse represents the response for getting a single order
type GetOrderResponse struct {
	BaseResponse
	Order *OrderDTO `json:"order,omitempty"`
}

// OrderBookResponse lists live orders best first on each side
type OrderBookResponse struct {
	BaseResponse
	Bids     []OrderDTO `json:"bids"`
	Asks     []OrderDTO `json:"asks"`
	BidCount int        `json:"bid_count"`
	AskCount int        `json:"ask_count"`
}

// DepthBandDTO is resting quantity aggregated over [low, high]
type DepthBandDTO struct {
	Low      decimal.Decimal `json:"low"`
	High     decimal.Decimal `json:"high"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DepthResponse represents the banded market depth
type DepthResponse struct {
	BaseResponse
	BandWidth decimal.Decimal `json:"band_width"`
	Buy       []DepthBandDTO  `json:"buy"`
	Sell      []DepthBandDTO  `json:"sell"`
}

// MarketPriceDTO carries the derived price signals. Absent values are null.
type MarketPriceDTO struct {
	Midpoint  decimal.NullDecimal `json:"midpoint"`
	VWAP      decimal.NullDecimal `json:"vwap"`
	LastTrade decimal.NullDecimal `json:"last_trade"`
	Spread    decimal.NullDecimal `json:"spread"`
	Timestamp time.Time           `json:"timestamp"`
}

// MarketPriceResponse represents one market price reading
type MarketPriceResponse struct {
	BaseResponse
	Price MarketPriceDTO `json:"price"`
}

// MarketHistoryResponse represents the retained price and spread histories
type MarketHistoryResponse struct {
	BaseResponse
	Prices  []MarketPriceDTO      `json:"prices"`
	Spreads []decimal.NullDecimal `json:"spreads"`
	Count   int                   `json:"count"`
}

// GetTradesResponse represents the response for getting trades
type GetTradesResponse struct {
	BaseResponse
	Trades []TradeDTO `json:"trades"`
	Count  int        `json:"count"`
}

// StopDTO represents a pending stop order
type StopDTO struct {
	OrderID        uint64              `json:"order_id"`
	Side           string              `json:"side"`
	Quantity       int64               `json:"quantity"`
	TriggerPrice   decimal.Decimal     `json:"trigger_price"`
	ConvertToLimit bool                `json:"convert_to_limit"`
	LimitPrice     decimal.NullDecimal `json:"limit_price"`
	State          string              `json:"state"`
	Timestamp      time.Time           `json:"timestamp"`
}

// GetStopsResponse lists pending stop orders in arrival order
type GetStopsResponse struct {
	BaseResponse
	Stops []StopDTO `json:"stops"`
	Count int       `json:"count"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Version       string    `json:"version"`
}
