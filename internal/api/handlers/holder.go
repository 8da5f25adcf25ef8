package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/PxPatel/auction-book/internal/api/models"
	"github.com/PxPatel/auction-book/internal/logger"
	"github.com/PxPatel/auction-book/internal/matching"
)

// Limits bounds the query parameters the handlers accept
type Limits struct {
	DefaultBandWidth  decimal.Decimal
	DefaultTradeLimit int
	MaxTradeLimit     int
}

func DefaultLimits() Limits {
	return Limits{
		DefaultBandWidth:  decimal.NewFromInt(1),
		DefaultTradeLimit: 100,
		MaxTradeLimit:     1000,
	}
}

// BookHolder wraps the order book for dependency injection
type BookHolder struct {
	Book   *matching.OrderBook
	Limits Limits

	nextID atomic.Uint64
}

// NewBookHolder creates a new book holder
func NewBookHolder(book *matching.OrderBook, limits Limits) *BookHolder {
	return &BookHolder{Book: book, Limits: limits}
}

// assignOrderID hands out an id for requests that did not bring one. Generated
// ids count down from the top of the range so they stay clear of client ids.
func (bh *BookHolder) assignOrderID() uint64 {
	return ^uint64(0) - bh.nextID.Add(1) + 1
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response
func writeErrorResponse(w http.ResponseWriter, httpErr *models.HTTPError) {
	logger.Warn("Request failed",
		zap.String("error_code", string(httpErr.Error.Code)),
		zap.Int("status", httpErr.StatusCode))

	writeJSON(w, httpErr.StatusCode, models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   httpErr.Error.Message,
		Error:     &httpErr.Error,
	})
}

// bookError maps an error returned by the order book to an HTTP error
func bookError(err error) *models.HTTPError {
	var verr *matching.ValidationError
	if errors.As(err, &verr) {
		switch {
		case errors.Is(err, matching.ErrDuplicateOrder):
			return models.ErrDuplicateOrderError(verr.OrderID)
		case errors.Is(err, matching.ErrInvalidQuantity):
			return models.NewHTTPError(http.StatusBadRequest, models.ErrInvalidQuantity, verr.Error(), nil)
		case errors.Is(err, matching.ErrInvalidSide):
			return models.NewHTTPError(http.StatusBadRequest, models.ErrInvalidSide, verr.Error(), nil)
		case errors.Is(err, matching.ErrMissingLimitPrice):
			return models.ErrMissingPriceError(verr.Field)
		case errors.Is(err, matching.ErrInvalidPrice):
			return models.NewHTTPError(http.StatusBadRequest, models.ErrInvalidPrice, verr.Error(),
				map[string]interface{}{"field": verr.Field})
		case errors.Is(err, matching.ErrInvalidOrderType):
			return models.NewHTTPError(http.StatusBadRequest, models.ErrInvalidOrderType, verr.Error(), nil)
		}
		return models.ErrBadRequest(verr.Error(), map[string]interface{}{"field": verr.Field})
	}

	var nerr *matching.NoLiquidityError
	if errors.As(err, &nerr) {
		return models.ErrNoLiquidityError(nerr.OrderID, nerr.Requested, nerr.Remaining)
	}

	if errors.Is(err, matching.ErrInvalidBandWidth) {
		return models.ErrInvalidBandWidthError("")
	}

	logger.Error("Unexpected book error", zap.Error(err))
	return models.ErrInternal("Unexpected error")
}
