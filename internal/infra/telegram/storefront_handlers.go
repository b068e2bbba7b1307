package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/adapter"
	"telegram-storefront-bot/internal/domain/ports/repository"
)

// Conversation steps for the customer side.
const stepOrderQuantity = "order:quantity"

// splitIDs parses a colon-separated callback argument into n int64 parts.
func splitIDs(arg string, n int) ([]int64, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d parts in %q", n, arg)
	}
	out := make([]int64, n)
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func (r *RealTelegramBotAdapter) cbMainMenu(ctx context.Context, user *model.User, _ string) error {
	text, rows := r.facade.MainMenu(user.Language, r.isAdmin(user.TelegramID))
	return r.SendButtons(ctx, user.TelegramID, text, rows)
}

func (r *RealTelegramBotAdapter) cbHelp(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	return r.SendMessage(ctx, user.TelegramID, t.T("help_message"))
}

func (r *RealTelegramBotAdapter) cbLanguageMenu(ctx context.Context, user *model.User, _ string) error {
	text, rows := r.facade.LanguageMenu(user.Language)
	return r.SendButtons(ctx, user.TelegramID, text, rows)
}

func (r *RealTelegramBotAdapter) cbSetLanguage(ctx context.Context, user *model.User, arg string) error {
	if err := r.facade.Users.SetLanguage(ctx, user.TelegramID, arg); err != nil {
		return err
	}
	user.Language = arg
	t := r.facade.Locales.ForLanguage(arg)
	if err := r.SendMessage(ctx, user.TelegramID, t.T("language_selected")); err != nil {
		return err
	}
	return r.cbMainMenu(ctx, user, "")
}

func (r *RealTelegramBotAdapter) cbBrowseLocations(ctx context.Context, user *model.User, _ string) error {
	text, rows, err := r.facade.BrowseLocations(ctx, user.Language)
	if err != nil {
		return err
	}
	return r.SendButtons(ctx, user.TelegramID, text, rows)
}

func (r *RealTelegramBotAdapter) cbBrowseManufacturers(ctx context.Context, user *model.User, arg string) error {
	ids, err := splitIDs(arg, 1)
	if err != nil {
		return err
	}
	text, rows, err := r.facade.BrowseManufacturers(ctx, user.Language, ids[0])
	if err != nil {
		return err
	}
	return r.SendButtons(ctx, user.TelegramID, text, rows)
}

func (r *RealTelegramBotAdapter) cbBrowseProducts(ctx context.Context, user *model.User, arg string) error {
	ids, err := splitIDs(arg, 2)
	if err != nil {
		return err
	}
	text, rows, err := r.facade.BrowseProducts(ctx, user.Language, ids[0], ids[1])
	if err != nil {
		return err
	}
	return r.SendButtons(ctx, user.TelegramID, text, rows)
}

func (r *RealTelegramBotAdapter) cbProductDetails(ctx context.Context, user *model.User, arg string) error {
	ids, err := splitIDs(arg, 2)
	if err != nil {
		return err
	}
	text, rows, err := r.facade.ProductDetails(ctx, user.Language, ids[0], ids[1])
	if err != nil {
		return err
	}
	return r.SendButtons(ctx, user.TelegramID, text, rows)
}

// cbAddToCart handles "qty:<loc>:<prod>:<n>" quick buttons; the "custom"
// suffix opens a free-text quantity prompt instead.
func (r *RealTelegramBotAdapter) cbAddToCart(ctx context.Context, user *model.User, arg string) error {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 {
		return fmt.Errorf("malformed quantity callback %q", arg)
	}
	if parts[2] == "custom" {
		t := r.facade.Locales.ForLanguage(user.Language)
		state := &repository.ConversationState{Step: stepOrderQuantity}
		state.Set("location_id", parts[0])
		state.Set("product_id", parts[1])
		if err := r.states.SetState(ctx, user.TelegramID, state); err != nil {
			return err
		}
		return r.SendMessage(ctx, user.TelegramID, t.T("enter_custom_quantity"))
	}

	ids, err := splitIDs(arg, 3)
	if err != nil {
		return err
	}
	return r.addToCart(ctx, user, ids[0], ids[1], int(ids[2]))
}

func (r *RealTelegramBotAdapter) addToCart(ctx context.Context, user *model.User, locationID, productID int64, qty int) error {
	text, err := r.facade.HandleAddToCart(ctx, user.TelegramID, user.Language, locationID, productID, qty)
	if err != nil {
		return err
	}
	t := r.facade.Locales.ForLanguage(user.Language)
	rows := [][]adapter.InlineButton{
		{
			{Text: t.T("view_cart"), Data: "cart:view"},
			{Text: t.T("continue_shopping"), Data: "menu:order"},
		},
	}
	return r.SendButtons(ctx, user.TelegramID, text, rows)
}

func (r *RealTelegramBotAdapter) cbCartView(ctx context.Context, user *model.User, _ string) error {
	text, rows, err := r.facade.HandleCart(ctx, user.TelegramID, user.Language)
	if err != nil {
		return err
	}
	return r.SendButtons(ctx, user.TelegramID, text, rows)
}

func (r *RealTelegramBotAdapter) cbCartRemove(ctx context.Context, user *model.User, arg string) error {
	ids, err := splitIDs(arg, 1)
	if err != nil {
		return err
	}
	if err := r.facade.Orders.RemoveCartItem(ctx, user.TelegramID, ids[0]); err != nil {
		return err
	}
	t := r.facade.Locales.ForLanguage(user.Language)
	if err := r.SendMessage(ctx, user.TelegramID, t.T("cart_item_removed")); err != nil {
		return err
	}
	return r.cbCartView(ctx, user, "")
}

func (r *RealTelegramBotAdapter) cbCartClear(ctx context.Context, user *model.User, _ string) error {
	if err := r.facade.Orders.ClearCart(ctx, user.TelegramID); err != nil {
		return err
	}
	t := r.facade.Locales.ForLanguage(user.Language)
	return r.SendMessage(ctx, user.TelegramID, t.T("cart_cleared"))
}

func (r *RealTelegramBotAdapter) cbCheckout(ctx context.Context, user *model.User, _ string) error {
	text, err := r.facade.HandleCheckout(ctx, user.TelegramID, user.Language)
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, text)
}

func (r *RealTelegramBotAdapter) cbMyOrders(ctx context.Context, user *model.User, _ string) error {
	text, err := r.facade.HandleMyOrders(ctx, user.TelegramID, user.Language)
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, text)
}

// handleStateInput routes free-text input into whichever multi-step flow the
// user has open.
func (r *RealTelegramBotAdapter) handleStateInput(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	if input == "/cancel" || strings.EqualFold(input, t.T("cancel")) {
		if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
			return err
		}
		return r.SendMessage(ctx, user.TelegramID, t.T("action_cancelled"))
	}

	switch state.Step {
	case stepOrderQuantity:
		return r.stateOrderQuantity(ctx, user, state, input)
	default:
		if strings.HasPrefix(state.Step, "admin:") {
			return r.handleAdminStateInput(ctx, user, state, input)
		}
		// Stale or unrecognized flow: drop it.
		_ = r.states.ClearState(ctx, user.TelegramID)
		return r.SendMessage(ctx, user.TelegramID, t.T("unknown_command"))
	}
}

func (r *RealTelegramBotAdapter) stateOrderQuantity(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	qty, err := strconv.Atoi(input)
	if err != nil || qty <= 0 {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_quantity"))
	}
	locationID, err := strconv.ParseInt(state.Get("location_id"), 10, 64)
	if err != nil {
		return err
	}
	productID, err := strconv.ParseInt(state.Get("product_id"), 10, 64)
	if err != nil {
		return err
	}
	if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
		return err
	}
	return r.addToCart(ctx, user, locationID, productID, qty)
}
