package model

import (
	"crypto/rand"
	"time"

	"telegram-storefront-bot/internal/domain"

	"github.com/oklog/ulid/v2"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusCompleted OrderStatus = "completed"
)

// transitions holds the allowed status graph. Terminal states map to nothing.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:  {OrderStatusApproved, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusApproved: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether from -> to is a legal move.
func (from OrderStatus) CanTransition(to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReleasesStock reports whether entering this status returns reserved
// quantities to the shelf.
func (s OrderStatus) ReleasesStock() bool {
	return s == OrderStatusRejected || s == OrderStatusCancelled
}

// Order is a placed purchase. Items snapshot the price at checkout time so
// later product edits do not rewrite order history.
type Order struct {
	ID         int64
	Reference  string
	UserID     int64
	LocationID int64
	Status     OrderStatus
	TotalMinor int64
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items []OrderItem
}

// OrderItem keeps its own location: carts may mix pickup locations, and
// releasing reserved stock must restore each line where it was reserved.
type OrderItem struct {
	ID             int64
	OrderID        int64
	ProductID      int64
	LocationID     int64
	Quantity       int
	UnitPriceMinor int64
}

// NewOrder builds a pending order from cart lines. The reference is a ULID so
// support conversations can name an order without leaking sequential IDs.
func NewOrder(userID, locationID int64, items []OrderItem) (*Order, error) {
	if userID <= 0 || locationID <= 0 || len(items) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	var total int64
	for _, it := range items {
		if it.ProductID <= 0 || it.LocationID <= 0 || it.Quantity <= 0 || it.UnitPriceMinor < 0 {
			return nil, domain.ErrInvalidArgument
		}
		total += int64(it.Quantity) * it.UnitPriceMinor
	}
	now := time.Now()
	return &Order{
		Reference:  ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:     userID,
		LocationID: locationID,
		Status:     OrderStatusPending,
		TotalMinor: total,
		CreatedAt:  now,
		Items:      items,
	}, nil
}

// Transition moves the order to a new status or fails with
// ErrInvalidStatusTransition.
func (o *Order) Transition(to OrderStatus) error {
	if !o.Status.CanTransition(to) {
		return domain.ErrInvalidStatusTransition
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}
