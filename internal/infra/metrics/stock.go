package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(stockAdjustments, stockShortfalls) }

var stockAdjustments = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Stock quantity changes by direction (increase/decrease/set).",
	},
	[]string{"direction"},
)

var stockShortfalls = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stock_shortfalls_total",
		Help: "Adjustments refused because the result would be negative.",
	},
)

func IncStockAdjustment(direction string) {
	stockAdjustments.WithLabelValues(strings.ToLower(direction)).Inc()
}

func IncStockShortfall() {
	stockShortfalls.Inc()
}
