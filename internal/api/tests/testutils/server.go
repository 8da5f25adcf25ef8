package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PxPatel/auction-book/internal/api/handlers"
	"github.com/PxPatel/auction-book/internal/api/models"
	"github.com/PxPatel/auction-book/internal/api/routes"
	"github.com/PxPatel/auction-book/internal/api/stream"
	"github.com/PxPatel/auction-book/internal/logger"
	"github.com/PxPatel/auction-book/internal/matching"
	"github.com/PxPatel/auction-book/internal/metrics"
	"github.com/PxPatel/auction-book/internal/storage"
	"github.com/PxPatel/auction-book/internal/types"
)

// TestServer wraps a test HTTP server with a fresh order book
type TestServer struct {
	Server       *httptest.Server
	Book         *matching.OrderBook
	Hub          *stream.Hub
	Registry     *prometheus.Registry
	TradeLogPath string
	t            testing.TB
}

// NewTestServer creates a new test server. Extra options are applied after
// the defaults.
func NewTestServer(t testing.TB, opts ...matching.Option) *TestServer {
	t.Helper()
	logger.SetDefault(logger.Wrap(zap.NewNop()))

	// Create temporary trade log file
	tradeLogPath := filepath.Join(t.TempDir(), "test_trades.log")
	fileStore, err := storage.NewFileTradeStore(tradeLogPath)
	require.NoError(t, err)

	hub := stream.NewHub()
	go hub.Run()

	registry := prometheus.NewRegistry()
	tape := storage.NewCompositeTradeStore(storage.NewInMemoryTradeStore(100), hub, fileStore)

	bookOpts := append([]matching.Option{
		matching.WithTradeStore(tape),
		matching.WithMetrics(metrics.NewRecorder(registry)),
	}, opts...)
	book, err := matching.NewOrderBook(bookOpts...)
	require.NoError(t, err)

	holder := handlers.NewBookHolder(book, handlers.DefaultLimits())
	handler := routes.SetupRoutes(holder, routes.Options{Gatherer: registry, Stream: hub})

	return &TestServer{
		Server:       httptest.NewServer(handler),
		Book:         book,
		Hub:          hub,
		Registry:     registry,
		TradeLogPath: tradeLogPath,
		t:            t,
	}
}

// Close shuts the server down and closes the tape, hub included
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Book.Close()
}

// URL returns the base URL for the test server
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Get makes a GET request to the test server
func (ts *TestServer) Get(path string) *http.Response {
	resp, err := http.Get(ts.URL() + path)
	require.NoError(ts.t, err, "GET request failed")
	return resp
}

// Post makes a POST request with JSON body
func (ts *TestServer) Post(path string, body interface{}) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err, "Failed to marshal request body")

	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewBuffer(jsonBody))
	require.NoError(ts.t, err, "POST request failed")
	return resp
}

// PostRaw sends body as-is, for malformed payloads
func (ts *TestServer) PostRaw(path, body string) *http.Response {
	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewBufferString(body))
	require.NoError(ts.t, err, "POST request failed")
	return resp
}

// Delete makes a DELETE request
func (ts *TestServer) Delete(path string) *http.Response {
	req, err := http.NewRequest(http.MethodDelete, ts.URL()+path, nil)
	require.NoError(ts.t, err, "Failed to create DELETE request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err, "DELETE request failed")
	return resp
}

// Submit posts an order, requires the expected status and decodes the response
func (ts *TestServer) Submit(req interface{}, status int) models.SubmitOrderResponse {
	resp := ts.Post("/api/v1/orders", req)
	require.Equal(ts.t, status, resp.StatusCode)

	var out models.SubmitOrderResponse
	DecodeJSON(ts.t, resp, &out)
	return out
}

// DecodeJSON decodes JSON response into target
func DecodeJSON(t testing.TB, resp *http.Response, target interface{}) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	err = json.Unmarshal(body, target)
	require.NoError(t, err, "Failed to decode JSON response: %s", string(body))
}

// ReadTradeLog reads the trade log file and returns trades
func (ts *TestServer) ReadTradeLog() []types.Trade {
	data, err := os.ReadFile(ts.TradeLogPath)
	if err != nil {
		return []types.Trade{}
	}

	var trades []types.Trade
	decoder := json.NewDecoder(bytes.NewReader(data))
	for {
		var trade types.Trade
		if err := decoder.Decode(&trade); err == io.EOF {
			break
		} else if err != nil {
			ts.t.Fatalf("Failed to decode trade: %v", err)
		}
		trades = append(trades, trade)
	}
	return trades
}

// GetBookSize returns the number of live orders on each side
func (ts *TestServer) GetBookSize() (bids, asks int) {
	snap := ts.Book.QueryBookSnapshot()
	return len(snap.Bids), len(snap.Asks)
}
