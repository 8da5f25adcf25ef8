package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PxPatel/auction-book/internal/api/handlers"
	"github.com/PxPatel/auction-book/internal/api/middleware"
)

// Options carries the optional endpoints. A nil Gatherer disables /metrics
// and a nil Stream disables /ws/trades.
type Options struct {
	Gatherer prometheus.Gatherer
	Stream   http.Handler
}

// SetupRoutes configures all API routes with middleware
func SetupRoutes(bookHolder *handlers.BookHolder, opts Options) http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", handlers.HealthHandler).Methods(http.MethodGet)

	// Order endpoints
	api.HandleFunc("/orders", bookHolder.SubmitOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}", bookHolder.GetOrderHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id:[0-9]+}", bookHolder.CancelOrderHandler).Methods(http.MethodDelete)
	api.HandleFunc("/stops", bookHolder.GetStopsHandler).Methods(http.MethodGet)

	// Order book endpoints
	api.HandleFunc("/orderbook", bookHolder.GetOrderBookHandler).Methods(http.MethodGet)
	api.HandleFunc("/orderbook/depth", bookHolder.GetDepthHandler).Methods(http.MethodGet)

	// Market data endpoints
	api.HandleFunc("/market/price", bookHolder.GetMarketPriceHandler).Methods(http.MethodGet)
	api.HandleFunc("/market/history", bookHolder.GetMarketHistoryHandler).Methods(http.MethodGet)

	// Trade endpoints
	api.HandleFunc("/trades", bookHolder.GetTradesHandler).Methods(http.MethodGet)

	if opts.Stream != nil {
		router.Handle("/ws/trades", opts.Stream)
	}
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Apply middleware (order matters: Recovery -> CORS -> Logging -> Handler)
	var handler http.Handler = middleware.Recovery(router)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(handler)

	return handler
}
