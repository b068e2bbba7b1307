package telegram

import (
	"context"

	"telegram-storefront-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoOpBotAdapter)(nil)

// NoOpBotAdapter discards everything. Used when the bot token is absent, so
// the web dashboard can run without Telegram connectivity.
type NoOpBotAdapter struct{}

func NewNoOpBotAdapter() *NoOpBotAdapter { return &NoOpBotAdapter{} }

func (n *NoOpBotAdapter) SendMessage(context.Context, int64, string) error { return nil }

func (n *NoOpBotAdapter) SendButtons(context.Context, int64, string, [][]adapter.InlineButton) error {
	return nil
}
