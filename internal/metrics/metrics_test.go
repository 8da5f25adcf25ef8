package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.OrderSubmitted("limit")
	r.OrderSubmitted("limit")
	r.OrderSubmitted("market")
	r.OrderRejected("stop")
	r.OrderCanceled()
	r.TradeExecuted(3)
	r.TradeExecuted(4)
	r.MarketUnfilled()
	r.StopTriggered()
	r.SetBookSize(5, 2, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.ordersSubmitted.WithLabelValues("limit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ordersSubmitted.WithLabelValues("market")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ordersRejected.WithLabelValues("stop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cancels))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.trades))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.tradedQuantity))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.noLiquidity))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stopsTriggered))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.restingOrders.WithLabelValues("buy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.restingOrders.WithLabelValues("sell")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pendingStops))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "auction_book_trades_total")
	assert.Contains(t, names, "auction_book_resting_orders")
}

func TestRecorderDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.OrderSubmitted("limit")
		r.OrderRejected("limit")
		r.OrderCanceled()
		r.TradeExecuted(1)
		r.MarketUnfilled()
		r.StopTriggered()
		r.SetBookSize(1, 1, 1)
	})
}
