package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SubmitOrderRequest represents a single order submission. Prices accept JSON
// strings or numbers. OrderID is optional; the server assigns one when it is 0.
type SubmitOrderRequest struct {
	OrderID        uint64              `json:"order_id"`
	OrderType      string              `json:"order_type"` // "limit" | "market" | "stop"
	Side           string              `json:"side"`       // "buy" | "sell"
	Price          decimal.NullDecimal `json:"price"`
	Quantity       int64               `json:"quantity"`
	TriggerPrice   decimal.NullDecimal `json:"trigger_price"`
	ConvertToLimit bool                `json:"convert_to_limit"`
	LimitPrice     decimal.NullDecimal `json:"limit_price"`
}

func (r *SubmitOrderRequest) NormalizedType() string {
	return strings.ToLower(strings.TrimSpace(r.OrderType))
}

func (r *SubmitOrderRequest) NormalizedSide() string {
	return strings.ToLower(strings.TrimSpace(r.Side))
}

// Validate validates the order request
func (r *SubmitOrderRequest) Validate() *HTTPError {
	orderType := r.NormalizedType()
	if orderType != "limit" && orderType != "market" && orderType != "stop" {
		return ErrInvalidOrderTypeError(r.OrderType)
	}

	side := r.NormalizedSide()
	if side != "buy" && side != "sell" {
		return ErrInvalidSideError(r.Side)
	}

	if r.Quantity <= 0 {
		return ErrInvalidQuantityError(r.Quantity)
	}

	switch orderType {
	case "limit":
		if !r.Price.Valid {
			return ErrMissingPriceError("price")
		}
		if !r.Price.Decimal.IsPositive() {
			return ErrInvalidPriceError("price", r.Price.Decimal.String())
		}
	case "stop":
		if !r.TriggerPrice.Valid {
			return ErrMissingPriceError("trigger_price")
		}
		if !r.TriggerPrice.Decimal.IsPositive() {
			return ErrInvalidPriceError("trigger_price", r.TriggerPrice.Decimal.String())
		}
		if r.ConvertToLimit {
			if !r.LimitPrice.Valid {
				return ErrMissingPriceError("limit_price")
			}
			if !r.LimitPrice.Decimal.IsPositive() {
				return ErrInvalidPriceError("limit_price", r.LimitPrice.Decimal.String())
			}
		}
	}

	return nil
}
