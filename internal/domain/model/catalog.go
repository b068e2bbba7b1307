package model

import (
	"strings"
	"time"

	"telegram-storefront-bot/internal/domain"
)

// Category groups products for browsing. Names are unique case-insensitively.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Category{Name: name, CreatedAt: time.Now()}, nil
}

// Manufacturer is the brand a product belongs to.
type Manufacturer struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewManufacturer(name string) (*Manufacturer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Manufacturer{Name: name, CreatedAt: time.Now()}, nil
}

// Location is a pickup point carrying its own stock.
type Location struct {
	ID        int64
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewLocation(name, address string) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Location{Name: name, Address: strings.TrimSpace(address), CreatedAt: time.Now()}, nil
}
