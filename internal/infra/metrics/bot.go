package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(botUpdates, botRateLimited) }

var botUpdates = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Processed telegram updates by kind (command/callback/message) and outcome.",
	},
	[]string{"kind", "outcome"},
)

var botRateLimited = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "bot_rate_limited_total",
		Help: "Updates dropped by the per-user rate limiter.",
	},
)

func IncBotUpdate(kind string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	botUpdates.WithLabelValues(strings.ToLower(kind), outcome).Inc()
}

func IncBotRateLimited() {
	botRateLimited.Inc()
}
