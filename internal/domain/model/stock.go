package model

import (
	"time"

	"telegram-storefront-bot/internal/domain"
)

// StockRecord is the quantity of one product held at one location.
// Quantity is never negative.
type StockRecord struct {
	ProductID  int64
	LocationID int64
	Quantity   int
	UpdatedAt  time.Time

	// Loaded on demand.
	Location *Location
}

func NewStockRecord(productID, locationID int64, qty int) (*StockRecord, error) {
	if productID <= 0 || locationID <= 0 || qty < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &StockRecord{ProductID: productID, LocationID: locationID, Quantity: qty}, nil
}

// Apply validates a delta against the current quantity.
// It returns the resulting quantity or ErrInsufficientStock.
func (s *StockRecord) Apply(delta int) (int, error) {
	next := s.Quantity + delta
	if next < 0 {
		return s.Quantity, domain.ErrInsufficientStock
	}
	return next, nil
}
