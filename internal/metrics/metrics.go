package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "auction_book"

// Recorder holds the book's Prometheus collectors. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	ordersSubmitted *prometheus.CounterVec
	ordersRejected  *prometheus.CounterVec
	cancels         prometheus.Counter
	trades          prometheus.Counter
	tradedQuantity  prometheus.Counter
	noLiquidity     prometheus.Counter
	stopsTriggered  prometheus.Counter
	restingOrders   *prometheus.GaugeVec
	pendingStops    prometheus.Gauge
}

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		ordersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Orders accepted by the book, by order type.",
		}, []string{"type"}),
		ordersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Orders rejected at submission, by order type.",
		}, []string{"type"}),
		cancels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_canceled_total",
			Help:      "Orders and pending stops canceled.",
		}),
		trades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Trades appended to the tape.",
		}),
		tradedQuantity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_quantity_total",
			Help:      "Sum of executed trade quantities.",
		}),
		noLiquidity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "market_orders_unfilled_total",
			Help:      "Market orders that left an unfilled remainder.",
		}),
		stopsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stops_triggered_total",
			Help:      "Stop orders converted after their trigger was crossed.",
		}),
		restingOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resting_orders",
			Help:      "Live limit orders resting in the book, by side.",
		}, []string{"side"}),
		pendingStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_stops",
			Help:      "Stop orders waiting for their trigger.",
		}),
	}

	reg.MustRegister(
		r.ordersSubmitted,
		r.ordersRejected,
		r.cancels,
		r.trades,
		r.tradedQuantity,
		r.noLiquidity,
		r.stopsTriggered,
		r.restingOrders,
		r.pendingStops,
	)
	return r
}

func (r *Recorder) OrderSubmitted(orderType string) {
	if r == nil {
		return
	}
	r.ordersSubmitted.WithLabelValues(orderType).Inc()
}

func (r *Recorder) OrderRejected(orderType string) {
	if r == nil {
		return
	}
	r.ordersRejected.WithLabelValues(orderType).Inc()
}

func (r *Recorder) OrderCanceled() {
	if r == nil {
		return
	}
	r.cancels.Inc()
}

func (r *Recorder) TradeExecuted(quantity int64) {
	if r == nil {
		return
	}
	r.trades.Inc()
	r.tradedQuantity.Add(float64(quantity))
}

func (r *Recorder) MarketUnfilled() {
	if r == nil {
		return
	}
	r.noLiquidity.Inc()
}

func (r *Recorder) StopTriggered() {
	if r == nil {
		return
	}
	r.stopsTriggered.Inc()
}

// SetBookSize publishes the current resting order counts.
func (r *Recorder) SetBookSize(bids, asks, stops int) {
	if r == nil {
		return
	}
	r.restingOrders.WithLabelValues("buy").Set(float64(bids))
	r.restingOrders.WithLabelValues("sell").Set(float64(asks))
	r.pendingStops.Set(float64(stops))
}
