package model

import (
	"time"

	"telegram-storefront-bot/internal/domain"
)

// CartItem is one line of a user's open cart, pinned to the location the
// user was browsing when they added it.
type CartItem struct {
	ID         int64
	UserID     int64
	ProductID  int64
	LocationID int64
	Quantity   int
	AddedAt    time.Time
}

func NewCartItem(userID, productID, locationID int64, qty int) (*CartItem, error) {
	if userID <= 0 || productID <= 0 || locationID <= 0 || qty <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &CartItem{
		UserID:     userID,
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   qty,
		AddedAt:    time.Now(),
	}, nil
}
