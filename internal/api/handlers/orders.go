package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/PxPatel/auction-book/internal/api/models"
	"github.com/PxPatel/auction-book/internal/logger"
	"github.com/PxPatel/auction-book/internal/matching"
	"github.com/PxPatel/auction-book/internal/types"
)

// SubmitOrderHandler handles limit, market and stop order submission
func (bh *BookHolder) SubmitOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitOrderRequest

	// Parse request body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	// Validate request
	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	orderID := req.OrderID
	if orderID == 0 {
		orderID = bh.assignOrderID()
	}
	side, _ := types.ParseSide(req.NormalizedSide())

	var exec *matching.Execution
	var err error
	switch req.NormalizedType() {
	case "limit":
		exec, err = bh.Book.SubmitLimitOrder(orderID, side, req.Price.Decimal, req.Quantity)
	case "market":
		exec, err = bh.Book.SubmitMarketOrder(orderID, side, req.Quantity)
	case "stop":
		exec, err = bh.Book.SubmitStopOrder(matching.StopRequest{
			ID:             orderID,
			Side:           side,
			Quantity:       req.Quantity,
			TriggerPrice:   req.TriggerPrice.Decimal,
			ConvertToLimit: req.ConvertToLimit,
			LimitPrice:     req.LimitPrice,
		})
	}

	if err != nil {
		var nerr *matching.NoLiquidityError
		if errors.As(err, &nerr) && exec != nil {
			// Partial fills stand; report them with the error
			httpErr := bookError(err)
			writeJSON(w, httpErr.StatusCode, models.SubmitOrderResponse{
				BaseResponse: models.BaseResponse{
					Success:   false,
					Timestamp: time.Now().UTC(),
					Message:   httpErr.Error.Message,
					Error:     &httpErr.Error,
				},
				Execution: convertExecutionToDTO(exec),
			})
			return
		}
		writeErrorResponse(w, bookError(err))
		return
	}

	logger.Info("Order submitted successfully",
		zap.Uint64("order_id", orderID),
		zap.String("type", req.NormalizedType()),
		zap.String("side", req.NormalizedSide()),
		zap.Int("trades", len(exec.Trades)),
		zap.Int("stops_triggered", len(exec.Conversions)))

	writeJSON(w, http.StatusOK, models.SubmitOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
			Message:   "Order submitted successfully",
		},
		Execution: convertExecutionToDTO(exec),
	})
}

// CancelOrderHandler cancels a live limit order or a pending stop
func (bh *BookHolder) CancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	if err := bh.Book.CancelOrder(orderID); err != nil {
		if errors.Is(err, matching.ErrUnknownOrder) {
			writeErrorResponse(w, models.ErrOrderNotFoundError(orderID))
			return
		}
		writeErrorResponse(w, bookError(err))
		return
	}

	logger.Info("Order cancelled", zap.Uint64("order_id", orderID))

	writeJSON(w, http.StatusOK, models.CancelOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
			Message:   "Order cancelled successfully",
		},
		OrderID: orderID,
	})
}

// GetOrderHandler handles retrieving a single live order
func (bh *BookHolder) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	order, found := bh.Book.Order(orderID)
	if !found {
		writeErrorResponse(w, models.ErrOrderNotFoundError(orderID))
		return
	}

	dto := convertOrderToDTO(order)
	writeJSON(w, http.StatusOK, models.GetOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Order: &dto,
	})
}

func orderIDFromPath(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	orderIDStr := mux.Vars(r)["id"]
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid order ID format", map[string]interface{}{"provided_value": orderIDStr}))
		return 0, false
	}
	return orderID, true
}
