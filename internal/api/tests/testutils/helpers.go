package testutils

import (
	"github.com/shopspring/decimal"

	"github.com/PxPatel/auction-book/internal/api/models"
)

// OrderRequest builders for common test cases

func price(p string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(p))
}

// NewMarketBuyOrder creates a market buy order request
func NewMarketBuyOrder(orderID uint64, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		OrderID:   orderID,
		OrderType: "market",
		Side:      "buy",
		Quantity:  quantity,
	}
}

// NewMarketSellOrder creates a market sell order request
func NewMarketSellOrder(orderID uint64, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		OrderID:   orderID,
		OrderType: "market",
		Side:      "sell",
		Quantity:  quantity,
	}
}

// NewLimitBuyOrder creates a limit buy order request
func NewLimitBuyOrder(orderID uint64, p string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		OrderID:   orderID,
		OrderType: "limit",
		Side:      "buy",
		Price:     price(p),
		Quantity:  quantity,
	}
}

// NewLimitSellOrder creates a limit sell order request
func NewLimitSellOrder(orderID uint64, p string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		OrderID:   orderID,
		OrderType: "limit",
		Side:      "sell",
		Price:     price(p),
		Quantity:  quantity,
	}
}

// NewStopMarketOrder creates a stop order that converts to a market order
func NewStopMarketOrder(orderID uint64, side, trigger string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		OrderID:      orderID,
		OrderType:    "stop",
		Side:         side,
		TriggerPrice: price(trigger),
		Quantity:     quantity,
	}
}

// NewStopLimitOrder creates a stop order that converts to a limit order
func NewStopLimitOrder(orderID uint64, side, trigger, limit string, quantity int64) models.SubmitOrderRequest {
	req := NewStopMarketOrder(orderID, side, trigger, quantity)
	req.ConvertToLimit = true
	req.LimitPrice = price(limit)
	return req
}
