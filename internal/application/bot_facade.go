package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/adapter"
	"telegram-storefront-bot/internal/infra/i18n"
	"telegram-storefront-bot/internal/usecase"
)

// BotFacade composes usecases into the replies the Telegram adapter sends.
// Methods return ready-to-send text plus inline keyboard rows; the adapter
// only routes callbacks and forwards whatever the facade built.
type BotFacade struct {
	Users    usecase.UserUseCase
	Catalog  usecase.CatalogUseCase
	Products usecase.ProductUseCase
	Stock    usecase.StockUseCase
	Orders   usecase.OrderUseCase
	Stats    usecase.StatsUseCase
	Locales  *i18n.Bundle
}

func NewBotFacade(
	users usecase.UserUseCase,
	catalog usecase.CatalogUseCase,
	products usecase.ProductUseCase,
	stock usecase.StockUseCase,
	orders usecase.OrderUseCase,
	stats usecase.StatsUseCase,
	locales *i18n.Bundle,
) *BotFacade {
	return &BotFacade{
		Users:    users,
		Catalog:  catalog,
		Products: products,
		Stock:    stock,
		Orders:   orders,
		Stats:    stats,
		Locales:  locales,
	}
}

func (b *BotFacade) tr(lang string) *i18n.Translator {
	return b.Locales.ForLanguage(lang)
}

// FormatMinor renders minor currency units as a decimal string.
func FormatMinor(m int64) string {
	return fmt.Sprintf("%.2f", float64(m)/100.0)
}

// HandleStart registers or refreshes the user and returns the welcome text.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username, firstName string) (*model.User, string, error) {
	u, err := b.Users.EnsureUser(ctx, tgID, username, firstName)
	if err != nil {
		return nil, "", fmt.Errorf("ensure user: %w", err)
	}
	t := b.tr(u.Language)
	name := firstName
	if name == "" {
		name = t.T("default_username")
	}
	return u, t.T("welcome_back", name), nil
}

// MainMenu builds the top-level keyboard. Admins get an extra row.
func (b *BotFacade) MainMenu(lang string, isAdmin bool) (string, [][]adapter.InlineButton) {
	t := b.tr(lang)
	rows := [][]adapter.InlineButton{
		{{Text: t.T("start_order"), Data: "menu:order"}},
		{{Text: t.T("view_cart"), Data: "cart:view"}, {Text: t.T("my_orders"), Data: "menu:orders"}},
		{{Text: t.T("change_language"), Data: "menu:language"}, {Text: t.T("help"), Data: "menu:help"}},
	}
	if isAdmin {
		rows = append(rows, []adapter.InlineButton{{Text: t.T("admin_menu_button"), Data: "adm:menu"}})
	}
	return t.T("main_menu"), rows
}

// LanguageMenu lists every loaded locale as a button.
func (b *BotFacade) LanguageMenu(lang string) (string, [][]adapter.InlineButton) {
	t := b.tr(lang)
	var rows [][]adapter.InlineButton
	for _, code := range b.Locales.Languages() {
		rows = append(rows, []adapter.InlineButton{
			{Text: t.T("language_name_" + code), Data: "lang:" + code},
		})
	}
	return t.T("choose_language"), rows
}

// BrowseLocations starts the order flow with the locations that have stock.
func (b *BotFacade) BrowseLocations(ctx context.Context, lang string) (string, [][]adapter.InlineButton, error) {
	t := b.tr(lang)
	locs, err := b.Stock.LocationsWithStock(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(locs) == 0 {
		return t.T("no_locations_available"), nil, nil
	}
	var rows [][]adapter.InlineButton
	for _, l := range locs {
		rows = append(rows, []adapter.InlineButton{
			{Text: l.Name, Data: fmt.Sprintf("loc:%d", l.ID)},
		})
	}
	return t.T("choose_location"), rows, nil
}

func (b *BotFacade) BrowseManufacturers(ctx context.Context, lang string, locationID int64) (string, [][]adapter.InlineButton, error) {
	t := b.tr(lang)
	loc, err := b.findLocation(ctx, locationID)
	if err != nil {
		return "", nil, err
	}
	mfgs, err := b.Stock.ManufacturersByLocation(ctx, locationID)
	if err != nil {
		return "", nil, err
	}
	if len(mfgs) == 0 {
		return t.T("no_manufacturers_available"), nil, nil
	}
	var rows [][]adapter.InlineButton
	for _, m := range mfgs {
		rows = append(rows, []adapter.InlineButton{
			{Text: m.Name, Data: fmt.Sprintf("mfg:%d:%d", locationID, m.ID)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: t.T("back"), Data: "menu:order"}})
	return t.T("choose_manufacturer", loc.Name), rows, nil
}

func (b *BotFacade) BrowseProducts(ctx context.Context, lang string, locationID, manufacturerID int64) (string, [][]adapter.InlineButton, error) {
	t := b.tr(lang)
	products, err := b.Stock.ProductsByManufacturerAtLocation(ctx, manufacturerID, locationID)
	if err != nil {
		return "", nil, err
	}
	if len(products) == 0 {
		return t.T("no_products_available"), nil, nil
	}
	mfgName := ""
	if products[0].Manufacturer != nil {
		mfgName = products[0].Manufacturer.Name
	}
	var rows [][]adapter.InlineButton
	for _, p := range products {
		label := p.LocalizedName(lang)
		if label == "" {
			label = p.SKU
		}
		if p.Variation != "" {
			label = fmt.Sprintf("%s (%s)", label, p.Variation)
		}
		rows = append(rows, []adapter.InlineButton{
			{Text: fmt.Sprintf("%s — %s", label, FormatMinor(p.CostMinor)), Data: fmt.Sprintf("prod:%d:%d", locationID, p.ID)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: t.T("back"), Data: fmt.Sprintf("loc:%d", locationID)}})
	return t.T("choose_product", mfgName), rows, nil
}

// ProductDetails shows one product with quick quantity buttons.
func (b *BotFacade) ProductDetails(ctx context.Context, lang string, locationID, productID int64) (string, [][]adapter.InlineButton, error) {
	t := b.tr(lang)
	p, err := b.Products.GetDetailed(ctx, productID)
	if err != nil {
		return "", nil, err
	}
	rec, err := b.Stock.Get(ctx, productID, locationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return t.T("product_out_of_stock"), nil, nil
		}
		return "", nil, err
	}
	if rec.Quantity == 0 {
		return t.T("product_out_of_stock"), nil, nil
	}

	name := p.LocalizedName(lang)
	desc := ""
	if loc := p.Localization(lang); loc != nil {
		desc = loc.Description
	}
	text := t.T("product_details", name, desc, FormatMinor(p.CostMinor), rec.Quantity, t.T("units_short"))

	var qtyRow []adapter.InlineButton
	for _, q := range []int{1, 2, 5, 10} {
		if q > rec.Quantity {
			break
		}
		qtyRow = append(qtyRow, adapter.InlineButton{
			Text: fmt.Sprintf("%d", q), Data: fmt.Sprintf("qty:%d:%d:%d", locationID, productID, q),
		})
	}
	qtyRow = append(qtyRow, adapter.InlineButton{
		Text: t.T("custom_quantity_button"), Data: fmt.Sprintf("qty:%d:%d:custom", locationID, productID),
	})
	rows := [][]adapter.InlineButton{qtyRow}
	rows = append(rows, []adapter.InlineButton{{Text: t.T("back"), Data: fmt.Sprintf("loc:%d", locationID)}})
	return text, rows, nil
}

func (b *BotFacade) HandleAddToCart(ctx context.Context, userID int64, lang string, locationID, productID int64, qty int) (string, error) {
	t := b.tr(lang)
	err := b.Orders.AddToCart(ctx, userID, productID, locationID, qty)
	switch {
	case err == nil:
		return t.T("added_to_cart"), nil
	case errors.Is(err, domain.ErrInsufficientStock):
		rec, recErr := b.Stock.Get(ctx, productID, locationID)
		available := 0
		if recErr == nil {
			available = rec.Quantity
		}
		name, _ := b.Products.LocalizedName(ctx, productID, lang)
		return t.T("quantity_exceeds_stock", qty, name, available), nil
	case errors.Is(err, domain.ErrInvalidArgument):
		return t.T("invalid_quantity"), nil
	default:
		return "", err
	}
}

// HandleCart renders the cart with per-item remove buttons.
func (b *BotFacade) HandleCart(ctx context.Context, userID int64, lang string) (string, [][]adapter.InlineButton, error) {
	t := b.tr(lang)
	items, err := b.Orders.Cart(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if len(items) == 0 {
		return t.T("cart_empty"), nil, nil
	}

	var sb strings.Builder
	sb.WriteString(t.T("cart_contents"))
	sb.WriteString("\n\n")
	var total int64
	var rows [][]adapter.InlineButton
	for _, it := range items {
		p, err := b.Products.GetDetailed(ctx, it.ProductID)
		if err != nil {
			return "", nil, err
		}
		locName := ""
		if loc, err := b.findLocation(ctx, it.LocationID); err == nil {
			locName = loc.Name
		}
		lineTotal := p.CostMinor * int64(it.Quantity)
		total += lineTotal
		sb.WriteString(t.T("cart_item_line",
			p.LocalizedName(lang), locName, it.Quantity, FormatMinor(p.CostMinor), FormatMinor(lineTotal)))
		sb.WriteString("\n")
		rows = append(rows, []adapter.InlineButton{
			{Text: fmt.Sprintf("%s %s", t.T("remove_item"), p.LocalizedName(lang)), Data: fmt.Sprintf("cart:rm:%d", it.ID)},
		})
	}
	sb.WriteString("\n")
	sb.WriteString(t.T("cart_total", FormatMinor(total)))

	rows = append(rows,
		[]adapter.InlineButton{{Text: t.T("checkout"), Data: "checkout"}},
		[]adapter.InlineButton{
			{Text: t.T("continue_shopping"), Data: "menu:order"},
			{Text: t.T("clear_cart"), Data: "cart:clear"},
		},
	)
	return sb.String(), rows, nil
}

// HandleCheckout turns the cart into a pending order.
func (b *BotFacade) HandleCheckout(ctx context.Context, userID int64, lang string) (string, error) {
	t := b.tr(lang)
	order, err := b.Orders.Checkout(ctx, userID)
	switch {
	case err == nil:
		return t.T("order_created", order.Reference), nil
	case errors.Is(err, domain.ErrEmptyCart):
		return t.T("cart_empty"), nil
	case errors.Is(err, domain.ErrInsufficientStock):
		return t.T("order_stock_insufficient"), nil
	case errors.Is(err, domain.ErrCheckoutInProgress):
		return t.T("checkout_in_progress"), nil
	default:
		return "", err
	}
}

// HandleMyOrders lists the user's orders, newest first.
func (b *BotFacade) HandleMyOrders(ctx context.Context, userID int64, lang string) (string, error) {
	t := b.tr(lang)
	orders, _, err := b.Orders.ListByUser(ctx, userID, 0, 10)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return t.T("no_orders_found"), nil
	}
	var sb strings.Builder
	sb.WriteString(t.T("your_orders"))
	sb.WriteString("\n\n")
	for _, o := range orders {
		sb.WriteString(t.T("order_line", o.Reference, b.StatusLabel(lang, o.Status), FormatMinor(o.TotalMinor)))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// StatusLabel translates an order status for display.
func (b *BotFacade) StatusLabel(lang string, status model.OrderStatus) string {
	return b.tr(lang).T("order_status_" + string(status))
}

// HandleStats renders the admin statistics summary.
func (b *BotFacade) HandleStats(ctx context.Context, lang string) (string, error) {
	t := b.tr(lang)
	s, err := b.Stats.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("stats snapshot: %w", err)
	}
	return t.T("stats_summary", s.Users, s.Products, s.StockUnits, s.OrdersByStatus[model.OrderStatusPending]), nil
}

func (b *BotFacade) findLocation(ctx context.Context, id int64) (*model.Location, error) {
	return b.Catalog.GetLocation(ctx, id)
}
