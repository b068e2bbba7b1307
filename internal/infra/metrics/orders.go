package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(ordersTotal, orderValueMinor, ordersReaped) }

var ordersTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orders_total",
		Help: "Orders by resulting status (pending/approved/rejected/cancelled/completed).",
	},
	[]string{"status"},
)

var orderValueMinor = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "order_value_minor",
		Help:    "Distribution of placed order totals in minor currency units.",
		Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
	},
)

var ordersReaped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "orders_reaped_total",
		Help: "Stale pending orders cancelled by the reaper.",
	},
)

func IncOrder(status string) {
	ordersTotal.WithLabelValues(strings.ToLower(status)).Inc()
}

func ObserveOrderValue(totalMinor int64) {
	orderValueMinor.Observe(float64(totalMinor))
}

func AddOrdersReaped(n int) {
	ordersReaped.Add(float64(n))
}
