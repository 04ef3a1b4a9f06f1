package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 注文まわりのメトリクス
type OrderMetrics struct {
	ordersPlaced   prometheus.Counter
	ordersCanceled prometheus.Counter
	ordersFailed   *prometheus.CounterVec

	placeDuration prometheus.Histogram
}

func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &OrderMetrics{
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "store_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		ordersCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "store_orders_canceled_total",
			Help: "Total number of orders canceled",
		}),
		ordersFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_orders_failed_total",
			Help: "Total number of order placements rejected",
		}, []string{"reason"}),
		placeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "store_order_place_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registerer.MustRegister(m.ordersPlaced, m.ordersCanceled, m.ordersFailed, m.placeDuration)
	return m
}

func (m *OrderMetrics) OrderPlaced(d time.Duration) {
	m.ordersPlaced.Inc()
	m.placeDuration.Observe(d.Seconds())
}

func (m *OrderMetrics) OrderCanceled() {
	m.ordersCanceled.Inc()
}

// reason: empty_cart / out_of_stock / not_sellable / error
func (m *OrderMetrics) OrderFailed(reason string) {
	m.ordersFailed.WithLabelValues(reason).Inc()
}
