//go:build !integration

package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-storefront-bot/internal/usecase"
)

type stubOrderUC struct {
	usecase.OrderUseCase
	calls atomic.Int32
	err   error
}

func (s *stubOrderUC) ReapStale(ctx context.Context, maxAge time.Duration) (int, error) {
	s.calls.Add(1)
	return 1, s.err
}

func TestOrderReaperRuns(t *testing.T) {
	logger := zerolog.Nop()
	uc := &stubOrderUC{}
	w := NewOrderReaper(10*time.Millisecond, time.Hour, uc, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := w.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if uc.calls.Load() == 0 {
		t.Fatal("expected at least one reap call")
	}
}

func TestOrderReaperSurvivesErrors(t *testing.T) {
	logger := zerolog.Nop()
	uc := &stubOrderUC{err: errors.New("db down")}
	w := NewOrderReaper(10*time.Millisecond, time.Hour, uc, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Millisecond)
	defer cancel()

	_ = w.Run(ctx)
	if uc.calls.Load() < 2 {
		t.Fatalf("expected the loop to keep running after an error, got %d calls", uc.calls.Load())
	}
}
