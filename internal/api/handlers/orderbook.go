package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/auction-book/internal/api/models"
	"github.com/PxPatel/auction-book/internal/matching"
)

// GetOrderBookHandler returns every live order, best first on each side
func (bh *BookHolder) GetOrderBookHandler(w http.ResponseWriter, r *http.Request) {
	snap := bh.Book.QueryBookSnapshot()

	writeJSON(w, http.StatusOK, models.OrderBookResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: snap.Timestamp.UTC(),
		},
		Bids:     convertOrdersToDTO(snap.Bids),
		Asks:     convertOrdersToDTO(snap.Asks),
		BidCount: len(snap.Bids),
		AskCount: len(snap.Asks),
	})
}

// GetDepthHandler buckets resting quantity into price bands.
// Query: band (decimal, default from config).
func (bh *BookHolder) GetDepthHandler(w http.ResponseWriter, r *http.Request) {
	width := bh.Limits.DefaultBandWidth
	if raw := r.URL.Query().Get("band"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeErrorResponse(w, models.ErrInvalidBandWidthError(raw))
			return
		}
		width = parsed
	}

	buy, sell, err := bh.Book.QueryMarketDepth(width)
	if err != nil {
		if errors.Is(err, matching.ErrInvalidBandWidth) {
			writeErrorResponse(w, models.ErrInvalidBandWidthError(width.String()))
			return
		}
		writeErrorResponse(w, bookError(err))
		return
	}

	writeJSON(w, http.StatusOK, models.DepthResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		BandWidth: width,
		Buy:       convertBandsToDTO(buy),
		Sell:      convertBandsToDTO(sell),
	})
}
