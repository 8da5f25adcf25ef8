package handlers

import (
	"net/http"
	"time"

	"github.com/PxPatel/auction-book/internal/api/models"
)

// GetMarketPriceHandler recomputes the market price. Each call is recorded in
// the price history.
func (bh *BookHolder) GetMarketPriceHandler(w http.ResponseWriter, r *http.Request) {
	snap := bh.Book.QueryMarketPrice()

	writeJSON(w, http.StatusOK, models.MarketPriceResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Price: convertSnapshotToDTO(snap),
	})
}

func (bh *BookHolder) GetMarketHistoryHandler(w http.ResponseWriter, r *http.Request) {
	prices := bh.Book.PriceHistory()
	spreads := bh.Book.SpreadHistory()

	dtos := make([]models.MarketPriceDTO, len(prices))
	for i, snap := range prices {
		dtos[i] = convertSnapshotToDTO(snap)
	}

	writeJSON(w, http.StatusOK, models.MarketHistoryResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Prices:  dtos,
		Spreads: spreads,
		Count:   len(dtos),
	})
}

// GetStopsHandler lists pending stop orders in arrival order
func (bh *BookHolder) GetStopsHandler(w http.ResponseWriter, r *http.Request) {
	stops := bh.Book.PendingStops()

	writeJSON(w, http.StatusOK, models.GetStopsResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Stops: convertStopsToDTO(stops),
		Count: len(stops),
	})
}
