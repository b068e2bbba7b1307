//go:build !integration

package web

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/usecase"
)

// --- Mock use cases ---
// Each stub embeds the interface for forward compatibility and overrides only
// what the test under hand exercises.

type stubStatsUC struct {
	usecase.StatsUseCase
	SnapshotFunc func(ctx context.Context) (*usecase.Stats, error)
}

func (s *stubStatsUC) Snapshot(ctx context.Context) (*usecase.Stats, error) {
	return s.SnapshotFunc(ctx)
}

type stubStockUC struct {
	usecase.StockUseCase
	AdjustFunc func(ctx context.Context, actorTgID, productID, locationID int64, delta int) (*model.StockRecord, error)
	SetFunc    func(ctx context.Context, actorTgID, productID, locationID int64, quantity int) (*model.StockRecord, error)
}

func (s *stubStockUC) Adjust(ctx context.Context, actorTgID, productID, locationID int64, delta int) (*model.StockRecord, error) {
	return s.AdjustFunc(ctx, actorTgID, productID, locationID, delta)
}

func (s *stubStockUC) Set(ctx context.Context, actorTgID, productID, locationID int64, quantity int) (*model.StockRecord, error) {
	return s.SetFunc(ctx, actorTgID, productID, locationID, quantity)
}

type stubOrderUC struct {
	usecase.OrderUseCase
	ListFunc         func(ctx context.Context, status model.OrderStatus, offset, limit int) ([]*model.Order, int, error)
	UpdateStatusFunc func(ctx context.Context, orderID int64, to model.OrderStatus, comment string) (*model.Order, error)
}

func (s *stubOrderUC) List(ctx context.Context, status model.OrderStatus, offset, limit int) ([]*model.Order, int, error) {
	return s.ListFunc(ctx, status, offset, limit)
}

func (s *stubOrderUC) UpdateStatus(ctx context.Context, orderID int64, to model.OrderStatus, comment string) (*model.Order, error) {
	return s.UpdateStatusFunc(ctx, orderID, to, comment)
}

type stubProductUC struct {
	usecase.ProductUseCase
	GetDetailedFunc func(ctx context.Context, id int64) (*model.Product, error)
	DeleteFunc      func(ctx context.Context, id int64) error
}

func (s *stubProductUC) GetDetailed(ctx context.Context, id int64) (*model.Product, error) {
	return s.GetDetailedFunc(ctx, id)
}

func (s *stubProductUC) Delete(ctx context.Context, id int64) error {
	return s.DeleteFunc(ctx, id)
}
