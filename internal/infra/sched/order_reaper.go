package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-storefront-bot/internal/usecase"
)

// OrderReaper periodically cancels pending orders that sat unconfirmed past
// the configured age, returning their reserved stock.
type OrderReaper struct {
	interval time.Duration
	staleAge time.Duration
	orders   usecase.OrderUseCase
	log      *zerolog.Logger
}

func NewOrderReaper(interval, staleAge time.Duration, orders usecase.OrderUseCase, logger *zerolog.Logger) *OrderReaper {
	reapLog := logger.With().Str("component", "OrderReaper").Logger()
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &OrderReaper{
		interval: interval,
		staleAge: staleAge,
		orders:   orders,
		log:      &reapLog,
	}
}

func (w *OrderReaper) Run(ctx context.Context) error {
	w.log.Info().
		Dur("interval", w.interval).
		Dur("stale_age", w.staleAge).
		Msg("Starting order reaper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping order reaper")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.orders.ReapStale(ctx, w.staleAge)
			if err != nil {
				w.log.Error().Err(err).Msg("order reaper error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("stale pending orders cancelled")
			}
		}
	}
}
