package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-storefront-bot/internal/application"
	"telegram-storefront-bot/internal/config"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/adapter"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/metrics"
	red "telegram-storefront-bot/internal/infra/redis"
)

const (
	rateLimitPerWindow = 20
	rateLimitWindow    = 10 * time.Second
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter drives the storefront over long polling. Updates
// fan out to a fixed worker pool; callback data is routed through exact and
// prefix tables.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	states      repository.StateRepository
	limiter     *red.RateLimiter
	adminIDsMap map[int64]struct{}
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc

	// cbRoutes matches callback data exactly; cbPrefixRoutes by prefix,
	// the remainder is passed as the argument.
	cbRoutes       map[string]callbackHandler
	cbPrefixRoutes map[string]callbackHandler
}

type callbackHandler func(ctx context.Context, user *model.User, arg string) error

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	states repository.StateRepository,
	limiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	r := &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		states:        states,
		limiter:       limiter,
		adminIDsMap:   adminMap,
		log:           logger,
		updateWorkers: workers,
	}
	r.registerRoutes()
	return r, nil
}

func (r *RealTelegramBotAdapter) registerRoutes() {
	r.cbRoutes = map[string]callbackHandler{
		"menu:main":     r.cbMainMenu,
		"menu:order":    r.cbBrowseLocations,
		"menu:orders":   r.cbMyOrders,
		"menu:help":     r.cbHelp,
		"menu:language": r.cbLanguageMenu,
		"cart:view":     r.cbCartView,
		"cart:clear":    r.cbCartClear,
		"checkout":      r.cbCheckout,
		"adm:menu":      r.adminGuard(r.cbAdminMenu),
		"adm:stats":     r.adminGuard(r.cbAdminStats),
		"adm:orders":    r.adminGuard(r.cbAdminOrders),
		"adm:users":     r.adminGuard(r.cbAdminUsers),
		"adm:prod":      r.adminGuard(r.cbAdminProducts),
		"adm:cat":       r.adminGuard(r.cbAdminCategories),
		"adm:mfg":       r.adminGuard(r.cbAdminManufacturers),
		"adm:locs":      r.adminGuard(r.cbAdminLocations),
		"adm:stock":     r.adminGuard(r.cbAdminStockStart),
	}
	r.cbPrefixRoutes = map[string]callbackHandler{
		"lang:":       r.cbSetLanguage,
		"loc:":        r.cbBrowseManufacturers,
		"mfg:":        r.cbBrowseProducts,
		"prod:":       r.cbProductDetails,
		"qty:":        r.cbAddToCart,
		"cart:rm:":    r.cbCartRemove,
		"adm:orders:": r.adminGuard(r.cbAdminOrdersByStatus),
		"adm:prod:":   r.adminGuard(r.cbAdminProductAction),
		"adm:ord:":    r.adminGuard(r.cbAdminOrderAction),
		"adm:cat:":    r.adminGuard(r.cbAdminCategoryAction),
		"adm:mfg:":    r.adminGuard(r.cbAdminManufacturerAction),
		"adm:locs:":   r.adminGuard(r.cbAdminLocationAction),
		"adm:stock:":  r.adminGuard(r.cbAdminStockAction),
		"adm:users:":  r.adminGuard(r.cbAdminUserAction),
	}
}

// StartPolling runs until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Error().Err(err).Int("worker", workerID).Msg("error handling update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	msg := tgbotapi.NewMessage(tgID, text)
	if len(rows) > 0 {
		var kb [][]tgbotapi.InlineKeyboardButton
		for _, row := range rows {
			var btns []tgbotapi.InlineKeyboardButton
			for _, b := range row {
				if b.URL != "" {
					btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				} else {
					btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
				}
			}
			kb = append(kb, btns)
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kb...)
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		err := r.handleCallback(ctx, update.CallbackQuery)
		metrics.IncBotUpdate("callback", err == nil)
		return err
	case update.Message != nil:
		err := r.handleMessage(ctx, update.Message)
		metrics.IncBotUpdate("message", err == nil)
		return err
	default:
		return nil
	}
}

func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	from := msg.From
	if from == nil {
		return nil
	}

	user, text, ok, err := r.admitUser(ctx, from, "message")
	if err != nil || !ok {
		if text != "" {
			_ = r.SendMessage(ctx, from.ID, text)
		}
		return err
	}

	if strings.HasPrefix(msg.Text, "/") {
		return r.handleCommand(ctx, user, strings.TrimSpace(msg.Text))
	}

	// Free text only matters inside a multi-step flow.
	state, err := r.states.GetState(ctx, user.TelegramID)
	if err != nil {
		return err
	}
	if state != nil {
		return r.handleStateInput(ctx, user, state, strings.TrimSpace(msg.Text))
	}

	t := r.facade.Locales.ForLanguage(user.Language)
	return r.SendMessage(ctx, user.TelegramID, t.T("unknown_command"))
}

func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	from := cb.From
	if from == nil {
		return nil
	}
	// Always answer so the client stops its spinner.
	_, _ = r.bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	user, text, ok, err := r.admitUser(ctx, from, "callback")
	if err != nil || !ok {
		if text != "" {
			_ = r.SendMessage(ctx, from.ID, text)
		}
		return err
	}

	data := cb.Data
	if h, ok := r.cbRoutes[data]; ok {
		return r.wrapHandlerErr(ctx, user, h(ctx, user, ""))
	}
	// Longest prefix wins so "cart:rm:" beats "cart:".
	var best string
	var bestHandler callbackHandler
	for prefix, h := range r.cbPrefixRoutes {
		if strings.HasPrefix(data, prefix) && len(prefix) > len(best) {
			best = prefix
			bestHandler = h
		}
	}
	if bestHandler != nil {
		return r.wrapHandlerErr(ctx, user, bestHandler(ctx, user, data[len(best):]))
	}

	t := r.facade.Locales.ForLanguage(user.Language)
	return r.SendMessage(ctx, user.TelegramID, t.T("unknown_command"))
}

// admitUser rate-limits, registers and block-checks the sender. The returned
// text, when non-empty, is the refusal to send.
func (r *RealTelegramBotAdapter) admitUser(ctx context.Context, from *tgbotapi.User, kind string) (*model.User, string, bool, error) {
	if r.limiter != nil {
		allowed, err := r.limiter.Allow(ctx, red.UserCommandKey(from.ID, kind), rateLimitPerWindow, rateLimitWindow)
		if err != nil {
			r.log.Warn().Err(err).Int64("tg_id", from.ID).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncBotRateLimited()
			return nil, "", false, nil
		}
	}

	user, _, err := r.facade.HandleStart(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		return nil, "", false, err
	}
	if user.IsBlocked {
		t := r.facade.Locales.ForLanguage(user.Language)
		return nil, t.T("user_blocked_message"), false, nil
	}
	return user, "", true, nil
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, user *model.User, cmd string) error {
	t := r.facade.Locales.ForLanguage(user.Language)
	switch cmd {
	case "/start":
		_, welcome, err := r.facade.HandleStart(ctx, user.TelegramID, user.Username, user.FirstName)
		if err != nil {
			return err
		}
		if err := r.SendMessage(ctx, user.TelegramID, welcome); err != nil {
			return err
		}
		return r.cbMainMenu(ctx, user, "")
	case "/help":
		return r.SendMessage(ctx, user.TelegramID, t.T("help_message"))
	case "/language":
		return r.cbLanguageMenu(ctx, user, "")
	case "/cart":
		return r.cbCartView(ctx, user, "")
	case "/orders":
		return r.cbMyOrders(ctx, user, "")
	case "/admin":
		return r.adminGuard(r.cbAdminMenu)(ctx, user, "")
	case "/stats":
		return r.adminGuard(r.cbAdminStats)(ctx, user, "")
	default:
		return r.SendMessage(ctx, user.TelegramID, t.T("unknown_command"))
	}
}

// wrapHandlerErr converts handler failures into a generic user-facing error
// message while still surfacing them to the worker's log.
func (r *RealTelegramBotAdapter) wrapHandlerErr(ctx context.Context, user *model.User, err error) error {
	if err == nil {
		return nil
	}
	t := r.facade.Locales.ForLanguage(user.Language)
	_ = r.SendMessage(ctx, user.TelegramID, t.T("error_occurred"))
	return err
}

func (r *RealTelegramBotAdapter) isAdmin(tgID int64) bool {
	_, ok := r.adminIDsMap[tgID]
	return ok
}

// adminGuard rejects non-admin senders before the wrapped handler runs.
func (r *RealTelegramBotAdapter) adminGuard(h callbackHandler) callbackHandler {
	return func(ctx context.Context, user *model.User, arg string) error {
		if !r.isAdmin(user.TelegramID) {
			t := r.facade.Locales.ForLanguage(user.Language)
			return r.SendMessage(ctx, user.TelegramID, t.T("admin_only"))
		}
		return h(ctx, user, arg)
	}
}
