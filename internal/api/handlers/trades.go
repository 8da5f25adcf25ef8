package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/PxPatel/auction-book/internal/api/models"
	"github.com/PxPatel/auction-book/internal/logger"
)

// GetTradesHandler handles retrieving recent trades
func (bh *BookHolder) GetTradesHandler(w http.ResponseWriter, r *http.Request) {
	limit := bh.Limits.DefaultTradeLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err == nil && parsedLimit > 0 {
			limit = min(parsedLimit, bh.Limits.MaxTradeLimit)
		}
	}

	trades, err := bh.Book.RecentTrades(limit)
	if err != nil {
		logger.Error("Failed to read trade tape", zap.Error(err))
		writeErrorResponse(w, models.ErrInternal("Failed to read trades"))
		return
	}

	tradeDTOs := convertTradesToDTO(trades)

	logger.Debug("Retrieved trades",
		zap.Int("count", len(tradeDTOs)),
		zap.Int("limit", limit))

	writeJSON(w, http.StatusOK, models.GetTradesResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Trades: tradeDTOs,
		Count:  len(tradeDTOs),
	})
}
