package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"telegram-storefront-bot/internal/application"
	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/adapter"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/i18n"
)

// Conversation steps for admin flows. All carry the "admin:" prefix so the
// state dispatcher can tell them apart from customer flows.
const (
	stepAdminCategoryName     = "admin:cat:name"
	stepAdminCategoryRename   = "admin:cat:rename"
	stepAdminManufacturerName = "admin:mfg:name"
	stepAdminManufacturerRen  = "admin:mfg:rename"
	stepAdminLocationName     = "admin:loc:name"
	stepAdminLocationAddress  = "admin:loc:address"
	stepAdminProductSKU       = "admin:prod:sku"
	stepAdminProductCost      = "admin:prod:cost"
	stepAdminProductName      = "admin:prod:name"
	stepAdminStockDelta       = "admin:stock:delta"
	stepAdminOrderComment     = "admin:ord:comment"
)

func (r *RealTelegramBotAdapter) cbAdminMenu(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	rows := [][]adapter.InlineButton{
		{
			{Text: t.T("admin_products_button"), Data: "adm:prod"},
			{Text: t.T("admin_categories_button"), Data: "adm:cat"},
		},
		{
			{Text: t.T("admin_manufacturers_button"), Data: "adm:mfg"},
			{Text: t.T("admin_locations_button"), Data: "adm:locs"},
		},
		{
			{Text: t.T("admin_stock_button"), Data: "adm:stock"},
			{Text: t.T("admin_orders_button"), Data: "adm:orders"},
		},
		{
			{Text: t.T("admin_users_button"), Data: "adm:users"},
			{Text: t.T("admin_stats_button"), Data: "adm:stats"},
		},
		{
			{Text: t.T("main_menu_button"), Data: "menu:main"},
		},
	}
	return r.SendButtons(ctx, user.TelegramID, t.T("admin_menu_title"), rows)
}

func (r *RealTelegramBotAdapter) cbAdminStats(ctx context.Context, user *model.User, _ string) error {
	text, err := r.facade.HandleStats(ctx, user.Language)
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, text)
}

// ---- orders ----

func (r *RealTelegramBotAdapter) cbAdminOrders(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	counts, err := r.facade.Orders.CountByStatus(ctx)
	if err != nil {
		return err
	}
	var rows [][]adapter.InlineButton
	for _, st := range []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusApproved,
		model.OrderStatusRejected, model.OrderStatusCancelled, model.OrderStatusCompleted,
	} {
		label := fmt.Sprintf("%s (%d)", r.facade.StatusLabel(user.Language, st), counts[st])
		rows = append(rows, []adapter.InlineButton{
			{Text: label, Data: "adm:orders:" + string(st)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: t.T("back"), Data: "adm:menu"}})
	return r.SendButtons(ctx, user.TelegramID, t.T("admin_orders_button"), rows)
}

func (r *RealTelegramBotAdapter) cbAdminOrdersByStatus(ctx context.Context, user *model.User, arg string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	status := model.OrderStatus(arg)
	orders, _, err := r.facade.Orders.List(ctx, status, 0, 10)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return r.SendMessage(ctx, user.TelegramID, t.T("no_orders_found"))
	}
	for _, o := range orders {
		text := t.T("order_line", o.Reference, r.facade.StatusLabel(user.Language, o.Status), application.FormatMinor(o.TotalMinor))
		rows := r.orderActionRows(t, o)
		if err := r.SendButtons(ctx, user.TelegramID, text, rows); err != nil {
			return err
		}
	}
	return nil
}

// orderActionRows offers only the transitions legal from the order's state.
func (r *RealTelegramBotAdapter) orderActionRows(t *i18n.Translator, o *model.Order) [][]adapter.InlineButton {
	var row []adapter.InlineButton
	add := func(label, action string) {
		row = append(row, adapter.InlineButton{
			Text: t.T(label), Data: fmt.Sprintf("adm:ord:%s:%d", action, o.ID),
		})
	}
	if o.Status.CanTransition(model.OrderStatusApproved) {
		add("order_status_approved", "approve")
	}
	if o.Status.CanTransition(model.OrderStatusRejected) {
		add("order_status_rejected", "reject")
	}
	if o.Status.CanTransition(model.OrderStatusCancelled) {
		add("order_status_cancelled", "cancel")
	}
	if o.Status.CanTransition(model.OrderStatusCompleted) {
		add("order_status_completed", "complete")
	}
	if len(row) == 0 {
		return nil
	}
	return [][]adapter.InlineButton{row}
}

var orderActions = map[string]model.OrderStatus{
	"approve":  model.OrderStatusApproved,
	"reject":   model.OrderStatusRejected,
	"cancel":   model.OrderStatusCancelled,
	"complete": model.OrderStatusCompleted,
}

// cbAdminOrderAction handles "adm:ord:<action>:<orderID>". Rejections and
// cancellations ask for a comment first; the rest apply immediately.
func (r *RealTelegramBotAdapter) cbAdminOrderAction(ctx context.Context, user *model.User, arg string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed order action %q", arg)
	}
	action, ok := orderActions[parts[0]]
	if !ok {
		return fmt.Errorf("unknown order action %q", parts[0])
	}
	orderID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return err
	}

	if action == model.OrderStatusRejected || action == model.OrderStatusCancelled {
		state := &repository.ConversationState{Step: stepAdminOrderComment}
		state.Set("order_id", parts[1])
		state.Set("target", string(action))
		if err := r.states.SetState(ctx, user.TelegramID, state); err != nil {
			return err
		}
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_enter_comment"))
	}
	return r.applyOrderStatus(ctx, user, orderID, action, "")
}

func (r *RealTelegramBotAdapter) applyOrderStatus(ctx context.Context, user *model.User, orderID int64, to model.OrderStatus, comment string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	order, err := r.facade.Orders.UpdateStatus(ctx, orderID, to, comment)
	switch {
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_invalid_status_transition"))
	case errors.Is(err, domain.ErrNotFound):
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_not_found"))
	case err != nil:
		return err
	}

	var key string
	switch to {
	case model.OrderStatusApproved:
		key = "admin_order_approved"
	case model.OrderStatusRejected:
		key = "admin_order_rejected"
	case model.OrderStatusCancelled:
		key = "admin_order_cancelled"
	case model.OrderStatusCompleted:
		key = "admin_order_completed"
	}
	if err := r.SendMessage(ctx, user.TelegramID, t.T(key)); err != nil {
		return err
	}
	return r.notifyOrderOwner(ctx, order)
}

// notifyOrderOwner tells the customer their order changed state. Failures are
// logged, not propagated; the admin action already succeeded.
func (r *RealTelegramBotAdapter) notifyOrderOwner(ctx context.Context, order *model.Order) error {
	owner, err := r.facade.Users.FindByTelegramID(ctx, order.UserID)
	if err != nil {
		r.log.Warn().Err(err).Int64("order_id", order.ID).Msg("cannot resolve order owner for notification")
		return nil
	}
	t := r.facade.Locales.ForLanguage(owner.Language)
	text := t.T("order_line", order.Reference, r.facade.StatusLabel(owner.Language, order.Status), application.FormatMinor(order.TotalMinor))
	if err := r.SendMessage(ctx, owner.TelegramID, text); err != nil {
		r.log.Warn().Err(err).Int64("tg_id", owner.TelegramID).Msg("order notification failed")
	}
	return nil
}

// ---- products ----

func (r *RealTelegramBotAdapter) cbAdminProducts(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	products, _, err := r.facade.Products.List(ctx, 0, 50)
	if err != nil {
		return err
	}
	var rows [][]adapter.InlineButton
	for _, p := range products {
		rows = append(rows, []adapter.InlineButton{
			{Text: p.SKU + " 🗑", Data: fmt.Sprintf("adm:prod:del:%d", p.ID)},
		})
	}
	rows = append(rows,
		[]adapter.InlineButton{{Text: "➕", Data: "adm:prod:new"}},
		[]adapter.InlineButton{{Text: t.T("back"), Data: "adm:menu"}},
	)
	return r.SendButtons(ctx, user.TelegramID, t.T("admin_products_button"), rows)
}

// cbAdminProductAction drives the creation chain: pick a manufacturer and a
// category via buttons, then the SKU, cost and name flow through free-text
// steps.
func (r *RealTelegramBotAdapter) cbAdminProductAction(ctx context.Context, user *model.User, arg string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	switch {
	case arg == "new":
		mfgs, _, err := r.facade.Catalog.ListManufacturers(ctx, 0, 50)
		if err != nil {
			return err
		}
		if len(mfgs) == 0 {
			return r.SendMessage(ctx, user.TelegramID, t.T("no_manufacturers_available"))
		}
		var rows [][]adapter.InlineButton
		for _, m := range mfgs {
			rows = append(rows, []adapter.InlineButton{
				{Text: m.Name, Data: fmt.Sprintf("adm:prod:mfg:%d", m.ID)},
			})
		}
		rows = append(rows, []adapter.InlineButton{{Text: t.T("back"), Data: "adm:prod"}})
		return r.SendButtons(ctx, user.TelegramID, t.T("admin_choose_manufacturer"), rows)
	case strings.HasPrefix(arg, "mfg:"):
		mfgID, err := strconv.ParseInt(arg[4:], 10, 64)
		if err != nil {
			return err
		}
		cats, _, err := r.facade.Catalog.ListCategories(ctx, 0, 50)
		if err != nil {
			return err
		}
		var rows [][]adapter.InlineButton
		for _, c := range cats {
			rows = append(rows, []adapter.InlineButton{
				{Text: c.Name, Data: fmt.Sprintf("adm:prod:cat:%d:%d", mfgID, c.ID)},
			})
		}
		// category id 0 means none
		rows = append(rows, []adapter.InlineButton{
			{Text: t.T("admin_no_category"), Data: fmt.Sprintf("adm:prod:cat:%d:0", mfgID)},
		})
		return r.SendButtons(ctx, user.TelegramID, t.T("admin_choose_category"), rows)
	case strings.HasPrefix(arg, "cat:"):
		ids, err := splitIDs(arg[4:], 2)
		if err != nil {
			return err
		}
		state := &repository.ConversationState{Step: stepAdminProductSKU}
		state.Set("manufacturer_id", strconv.FormatInt(ids[0], 10))
		state.Set("category_id", strconv.FormatInt(ids[1], 10))
		if err := r.states.SetState(ctx, user.TelegramID, state); err != nil {
			return err
		}
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_enter_sku"))
	case strings.HasPrefix(arg, "del:"):
		id, err := strconv.ParseInt(arg[4:], 10, 64)
		if err != nil {
			return err
		}
		if err := r.facade.Products.Delete(ctx, id); err != nil {
			return r.sendCatalogErr(ctx, user, err)
		}
		if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_deleted")); err != nil {
			return err
		}
		return r.cbAdminProducts(ctx, user, "")
	default:
		return fmt.Errorf("unknown product action %q", arg)
	}
}

// ---- categories / manufacturers ----

func (r *RealTelegramBotAdapter) cbAdminCategories(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	cats, _, err := r.facade.Catalog.ListCategories(ctx, 0, 50)
	if err != nil {
		return err
	}
	var rows [][]adapter.InlineButton
	for _, c := range cats {
		rows = append(rows, []adapter.InlineButton{
			{Text: c.Name, Data: fmt.Sprintf("adm:cat:ren:%d", c.ID)},
			{Text: "🗑", Data: fmt.Sprintf("adm:cat:del:%d", c.ID)},
		})
	}
	rows = append(rows,
		[]adapter.InlineButton{{Text: "➕", Data: "adm:cat:new"}},
		[]adapter.InlineButton{{Text: t.T("back"), Data: "adm:menu"}},
	)
	return r.SendButtons(ctx, user.TelegramID, t.T("admin_categories_button"), rows)
}

func (r *RealTelegramBotAdapter) cbAdminCategoryAction(ctx context.Context, user *model.User, arg string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	switch {
	case arg == "new":
		return r.promptName(ctx, user, stepAdminCategoryName, nil)
	case strings.HasPrefix(arg, "ren:"):
		return r.promptName(ctx, user, stepAdminCategoryRename, map[string]string{"id": arg[4:]})
	case strings.HasPrefix(arg, "del:"):
		id, err := strconv.ParseInt(arg[4:], 10, 64)
		if err != nil {
			return err
		}
		if err := r.facade.Catalog.DeleteCategory(ctx, id); err != nil {
			return r.sendCatalogErr(ctx, user, err)
		}
		if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_deleted")); err != nil {
			return err
		}
		return r.cbAdminCategories(ctx, user, "")
	default:
		return fmt.Errorf("unknown category action %q", arg)
	}
}

func (r *RealTelegramBotAdapter) cbAdminManufacturers(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	mfgs, _, err := r.facade.Catalog.ListManufacturers(ctx, 0, 50)
	if err != nil {
		return err
	}
	var rows [][]adapter.InlineButton
	for _, m := range mfgs {
		rows = append(rows, []adapter.InlineButton{
			{Text: m.Name, Data: fmt.Sprintf("adm:mfg:ren:%d", m.ID)},
			{Text: "🗑", Data: fmt.Sprintf("adm:mfg:del:%d", m.ID)},
		})
	}
	rows = append(rows,
		[]adapter.InlineButton{{Text: "➕", Data: "adm:mfg:new"}},
		[]adapter.InlineButton{{Text: t.T("back"), Data: "adm:menu"}},
	)
	return r.SendButtons(ctx, user.TelegramID, t.T("admin_manufacturers_button"), rows)
}

func (r *RealTelegramBotAdapter) cbAdminManufacturerAction(ctx context.Context, user *model.User, arg string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	switch {
	case arg == "new":
		return r.promptName(ctx, user, stepAdminManufacturerName, nil)
	case strings.HasPrefix(arg, "ren:"):
		return r.promptName(ctx, user, stepAdminManufacturerRen, map[string]string{"id": arg[4:]})
	case strings.HasPrefix(arg, "del:"):
		id, err := strconv.ParseInt(arg[4:], 10, 64)
		if err != nil {
			return err
		}
		if err := r.facade.Catalog.DeleteManufacturer(ctx, id); err != nil {
			return r.sendCatalogErr(ctx, user, err)
		}
		if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_deleted")); err != nil {
			return err
		}
		return r.cbAdminManufacturers(ctx, user, "")
	default:
		return fmt.Errorf("unknown manufacturer action %q", arg)
	}
}

// ---- locations ----

func (r *RealTelegramBotAdapter) cbAdminLocations(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	locs, _, err := r.facade.Catalog.ListLocations(ctx, 0, 50)
	if err != nil {
		return err
	}
	var rows [][]adapter.InlineButton
	for _, l := range locs {
		rows = append(rows, []adapter.InlineButton{
			{Text: l.Name, Data: fmt.Sprintf("adm:locs:ren:%d", l.ID)},
			{Text: "🗑", Data: fmt.Sprintf("adm:locs:del:%d", l.ID)},
		})
	}
	rows = append(rows,
		[]adapter.InlineButton{{Text: "➕", Data: "adm:locs:new"}},
		[]adapter.InlineButton{{Text: t.T("back"), Data: "adm:menu"}},
	)
	return r.SendButtons(ctx, user.TelegramID, t.T("admin_locations_button"), rows)
}

func (r *RealTelegramBotAdapter) cbAdminLocationAction(ctx context.Context, user *model.User, arg string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	switch {
	case arg == "new":
		return r.promptName(ctx, user, stepAdminLocationName, nil)
	case strings.HasPrefix(arg, "ren:"):
		return r.promptName(ctx, user, stepAdminLocationName, map[string]string{"id": arg[4:]})
	case strings.HasPrefix(arg, "del:"):
		id, err := strconv.ParseInt(arg[4:], 10, 64)
		if err != nil {
			return err
		}
		if err := r.facade.Catalog.DeleteLocation(ctx, id); err != nil {
			return r.sendCatalogErr(ctx, user, err)
		}
		if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_deleted")); err != nil {
			return err
		}
		return r.cbAdminLocations(ctx, user, "")
	default:
		return fmt.Errorf("unknown location action %q", arg)
	}
}

// ---- stock ----

func (r *RealTelegramBotAdapter) cbAdminStockStart(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	locs, _, err := r.facade.Catalog.ListLocations(ctx, 0, 50)
	if err != nil {
		return err
	}
	var rows [][]adapter.InlineButton
	for _, l := range locs {
		rows = append(rows, []adapter.InlineButton{
			{Text: l.Name, Data: fmt.Sprintf("adm:stock:loc:%d", l.ID)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: t.T("back"), Data: "adm:menu"}})
	return r.SendButtons(ctx, user.TelegramID, t.T("choose_location"), rows)
}

func (r *RealTelegramBotAdapter) cbAdminStockAction(ctx context.Context, user *model.User, arg string) error {
	switch {
	case strings.HasPrefix(arg, "loc:"):
		locationID, err := strconv.ParseInt(arg[4:], 10, 64)
		if err != nil {
			return err
		}
		return r.adminStockProducts(ctx, user, locationID)
	case strings.HasPrefix(arg, "prod:"):
		ids, err := splitIDs(arg[5:], 2)
		if err != nil {
			return err
		}
		return r.adminStockPrompt(ctx, user, ids[0], ids[1])
	default:
		return fmt.Errorf("unknown stock action %q", arg)
	}
}

func (r *RealTelegramBotAdapter) adminStockProducts(ctx context.Context, user *model.User, locationID int64) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	products, _, err := r.facade.Products.List(ctx, 0, 100)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return r.SendMessage(ctx, user.TelegramID, t.T("no_products_available"))
	}
	var rows [][]adapter.InlineButton
	for _, p := range products {
		qty := 0
		if rec, err := r.facade.Stock.Get(ctx, p.ID, locationID); err == nil {
			qty = rec.Quantity
		}
		label := fmt.Sprintf("%s (%d)", p.SKU, qty)
		rows = append(rows, []adapter.InlineButton{
			{Text: label, Data: fmt.Sprintf("adm:stock:prod:%d:%d", locationID, p.ID)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: t.T("back"), Data: "adm:stock"}})
	return r.SendButtons(ctx, user.TelegramID, t.T("admin_stock_button"), rows)
}

func (r *RealTelegramBotAdapter) adminStockPrompt(ctx context.Context, user *model.User, locationID, productID int64) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	name, err := r.facade.Products.LocalizedName(ctx, productID, user.Language)
	if err != nil {
		return err
	}
	loc, err := r.facade.Catalog.GetLocation(ctx, locationID)
	if err != nil {
		return err
	}
	state := &repository.ConversationState{Step: stepAdminStockDelta}
	state.Set("product_id", strconv.FormatInt(productID, 10))
	state.Set("location_id", strconv.FormatInt(locationID, 10))
	if err := r.states.SetState(ctx, user.TelegramID, state); err != nil {
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, t.T("admin_enter_stock_delta", name, loc.Name))
}

// ---- users ----

func (r *RealTelegramBotAdapter) cbAdminUsers(ctx context.Context, user *model.User, _ string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	users, _, err := r.facade.Users.List(ctx, repository.UsersAll, 0, 20)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_no_users_found"))
	}
	var rows [][]adapter.InlineButton
	for _, u := range users {
		label := u.Username
		if label == "" {
			label = u.FirstName
		}
		if u.IsBlocked {
			rows = append(rows, []adapter.InlineButton{
				{Text: "🚫 " + label, Data: fmt.Sprintf("adm:users:unblock:%d", u.ID)},
			})
		} else {
			rows = append(rows, []adapter.InlineButton{
				{Text: label, Data: fmt.Sprintf("adm:users:block:%d", u.ID)},
			})
		}
	}
	rows = append(rows, []adapter.InlineButton{{Text: t.T("back"), Data: "adm:menu"}})
	return r.SendButtons(ctx, user.TelegramID, t.T("admin_users_button"), rows)
}

func (r *RealTelegramBotAdapter) cbAdminUserAction(ctx context.Context, user *model.User, arg string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed user action %q", arg)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return err
	}
	switch parts[0] {
	case "block":
		if err := r.facade.Users.SetBlocked(ctx, id, true); err != nil {
			return err
		}
		if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_user_blocked")); err != nil {
			return err
		}
	case "unblock":
		if err := r.facade.Users.SetBlocked(ctx, id, false); err != nil {
			return err
		}
		if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_user_unblocked")); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown user action %q", parts[0])
	}
	return r.cbAdminUsers(ctx, user, "")
}

// ---- free-text flow steps ----

func (r *RealTelegramBotAdapter) promptName(ctx context.Context, user *model.User, step string, data map[string]string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	state := &repository.ConversationState{Step: step, Data: data}
	if err := r.states.SetState(ctx, user.TelegramID, state); err != nil {
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, t.T("admin_enter_name"))
}

func (r *RealTelegramBotAdapter) handleAdminStateInput(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	if !r.isAdmin(user.TelegramID) {
		_ = r.states.ClearState(ctx, user.TelegramID)
		t := r.facade.Locales.ForLanguage(user.Language)
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_only"))
	}

	switch state.Step {
	case stepAdminCategoryName:
		return r.finishCatalogName(ctx, user, input, func() error {
			_, err := r.facade.Catalog.CreateCategory(ctx, input)
			return err
		}, r.cbAdminCategories)
	case stepAdminCategoryRename:
		return r.finishCatalogRename(ctx, user, state, input, func(id int64) error {
			_, err := r.facade.Catalog.RenameCategory(ctx, id, input)
			return err
		}, r.cbAdminCategories)
	case stepAdminManufacturerName:
		return r.finishCatalogName(ctx, user, input, func() error {
			_, err := r.facade.Catalog.CreateManufacturer(ctx, input)
			return err
		}, r.cbAdminManufacturers)
	case stepAdminManufacturerRen:
		return r.finishCatalogRename(ctx, user, state, input, func(id int64) error {
			_, err := r.facade.Catalog.RenameManufacturer(ctx, id, input)
			return err
		}, r.cbAdminManufacturers)
	case stepAdminLocationName:
		return r.stateLocationName(ctx, user, state, input)
	case stepAdminLocationAddress:
		return r.stateLocationAddress(ctx, user, state, input)
	case stepAdminProductSKU:
		return r.stateProductSKU(ctx, user, state, input)
	case stepAdminProductCost:
		return r.stateProductCost(ctx, user, state, input)
	case stepAdminProductName:
		return r.stateProductName(ctx, user, state, input)
	case stepAdminStockDelta:
		return r.stateStockDelta(ctx, user, state, input)
	case stepAdminOrderComment:
		return r.stateOrderComment(ctx, user, state, input)
	default:
		_ = r.states.ClearState(ctx, user.TelegramID)
		t := r.facade.Locales.ForLanguage(user.Language)
		return r.SendMessage(ctx, user.TelegramID, t.T("unknown_command"))
	}
}

func (r *RealTelegramBotAdapter) finishCatalogName(ctx context.Context, user *model.User, input string, create func() error, back callbackHandler) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	if strings.TrimSpace(input) == "" {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	}
	if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
		return err
	}
	if err := create(); err != nil {
		return r.sendCatalogErr(ctx, user, err)
	}
	if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_created")); err != nil {
		return err
	}
	return back(ctx, user, "")
}

func (r *RealTelegramBotAdapter) finishCatalogRename(ctx context.Context, user *model.User, state *repository.ConversationState, input string, rename func(int64) error, back callbackHandler) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	id, err := strconv.ParseInt(state.Get("id"), 10, 64)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input) == "" {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	}
	if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
		return err
	}
	if err := rename(id); err != nil {
		return r.sendCatalogErr(ctx, user, err)
	}
	if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_updated")); err != nil {
		return err
	}
	return back(ctx, user, "")
}

// stateLocationName either renames an existing location (id in state) or
// starts the two-step create flow by asking for an address next.
func (r *RealTelegramBotAdapter) stateLocationName(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	if strings.TrimSpace(input) == "" {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	}
	if idStr := state.Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return err
		}
		if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
			return err
		}
		name := input
		if _, err := r.facade.Catalog.UpdateLocation(ctx, id, repository.LocationUpdate{Name: &name}); err != nil {
			return r.sendCatalogErr(ctx, user, err)
		}
		if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_updated")); err != nil {
			return err
		}
		return r.cbAdminLocations(ctx, user, "")
	}

	next := &repository.ConversationState{Step: stepAdminLocationAddress}
	next.Set("name", input)
	if err := r.states.SetState(ctx, user.TelegramID, next); err != nil {
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, t.T("admin_enter_address"))
}

func (r *RealTelegramBotAdapter) stateLocationAddress(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	if strings.TrimSpace(input) == "" {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	}
	if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
		return err
	}
	if _, err := r.facade.Catalog.CreateLocation(ctx, state.Get("name"), input); err != nil {
		return r.sendCatalogErr(ctx, user, err)
	}
	if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_created")); err != nil {
		return err
	}
	return r.cbAdminLocations(ctx, user, "")
}

func (r *RealTelegramBotAdapter) stateProductSKU(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	sku := strings.TrimSpace(input)
	if sku == "" {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	}
	state.Step = stepAdminProductCost
	state.Set("sku", sku)
	if err := r.states.SetState(ctx, user.TelegramID, state); err != nil {
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, t.T("admin_enter_cost"))
}

func (r *RealTelegramBotAdapter) stateProductCost(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	cost, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || cost < 0 {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	}
	state.Step = stepAdminProductName
	state.Set("cost_minor", strconv.FormatInt(cost, 10))
	if err := r.states.SetState(ctx, user.TelegramID, state); err != nil {
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, t.T("admin_enter_product_name"))
}

// stateProductName completes the chain: the typed name becomes the
// localization for the admin's own language, the dashboard fills in the rest.
func (r *RealTelegramBotAdapter) stateProductName(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	name := strings.TrimSpace(input)
	if name == "" {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	}
	mfgID, err := strconv.ParseInt(state.Get("manufacturer_id"), 10, 64)
	if err != nil {
		return err
	}
	catID, err := strconv.ParseInt(state.Get("category_id"), 10, 64)
	if err != nil {
		return err
	}
	cost, err := strconv.ParseInt(state.Get("cost_minor"), 10, 64)
	if err != nil {
		return err
	}
	if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
		return err
	}

	p, err := model.NewProduct(mfgID, cost)
	if err != nil {
		return r.sendCatalogErr(ctx, user, err)
	}
	p.SKU = state.Get("sku")
	if catID > 0 {
		p.CategoryID = &catID
	}
	created, err := r.facade.Products.Create(ctx, p)
	if err != nil {
		return r.sendCatalogErr(ctx, user, err)
	}
	if err := r.facade.Products.SetLocalization(ctx, created.ID, user.Language, name, ""); err != nil {
		return err
	}
	if err := r.SendMessage(ctx, user.TelegramID, t.T("admin_created")); err != nil {
		return err
	}
	return r.cbAdminProducts(ctx, user, "")
}

func (r *RealTelegramBotAdapter) stateStockDelta(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	delta, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || delta == 0 {
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	}
	productID, err := strconv.ParseInt(state.Get("product_id"), 10, 64)
	if err != nil {
		return err
	}
	locationID, err := strconv.ParseInt(state.Get("location_id"), 10, 64)
	if err != nil {
		return err
	}
	if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
		return err
	}

	rec, err := r.facade.Stock.Adjust(ctx, user.TelegramID, productID, locationID, delta)
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_stock_insufficient"))
	case err != nil:
		return err
	}
	return r.SendMessage(ctx, user.TelegramID, t.T("admin_stock_adjusted", rec.Quantity, t.T("units_short")))
}

func (r *RealTelegramBotAdapter) stateOrderComment(ctx context.Context, user *model.User, state *repository.ConversationState, input string) error {
	orderID, err := strconv.ParseInt(state.Get("order_id"), 10, 64)
	if err != nil {
		return err
	}
	target := model.OrderStatus(state.Get("target"))
	if err := r.states.ClearState(ctx, user.TelegramID); err != nil {
		return err
	}
	comment := strings.TrimSpace(input)
	if comment == "-" {
		comment = ""
	}
	return r.applyOrderStatus(ctx, user, orderID, target, comment)
}

// sendCatalogErr maps expected catalog failures to admin-facing text and
// passes everything else through.
func (r *RealTelegramBotAdapter) sendCatalogErr(ctx context.Context, user *model.User, err error) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_duplicate_name"))
	case errors.Is(err, domain.ErrInUse):
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_delete_in_use"))
	case errors.Is(err, domain.ErrNotFound):
		return r.SendMessage(ctx, user.TelegramID, t.T("admin_not_found"))
	case errors.Is(err, domain.ErrInvalidArgument):
		return r.SendMessage(ctx, user.TelegramID, t.T("invalid_input"))
	default:
		return err
	}
}
