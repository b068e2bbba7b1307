package model

import (
	"time"

	"telegram-storefront-bot/internal/domain"
)

// User is a domain entity representing a Telegram user of the shop.
// Language drives which localization is shown; blocked users are refused
// by every handler before any use case runs.
type User struct {
	ID           int64
	TelegramID   int64
	Username     string
	FirstName    string
	Language     string
	IsAdmin      bool
	IsBlocked    bool
	RegisteredAt time.Time
	LastActiveAt time.Time
}

// DefaultLanguage is used until the user picks one explicitly.
const DefaultLanguage = "en"

func NewUser(tgID int64, username, firstName string) (*User, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		TelegramID:   tgID,
		Username:     username,
		FirstName:    firstName,
		Language:     DefaultLanguage,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.TelegramID == 0 }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
