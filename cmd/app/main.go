package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-storefront-bot/internal/application"
	"telegram-storefront-bot/internal/config"
	"telegram-storefront-bot/internal/infra/i18n"
	"telegram-storefront-bot/internal/infra/logging"
	"telegram-storefront-bot/internal/infra/metrics"
	"telegram-storefront-bot/internal/infra/sched"
	tele "telegram-storefront-bot/internal/infra/telegram"
	"telegram-storefront-bot/internal/infra/web"
	"telegram-storefront-bot/internal/usecase"

	pg "telegram-storefront-bot/internal/infra/db/postgres"
	red "telegram-storefront-bot/internal/infra/redis"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging, relaxed checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 30*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)
	stateRepo := red.NewStateRepo(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	productRepo := pg.NewPostgresProductRepo(pool)
	stockRepo := pg.NewPostgresStockRepo(pool)
	orderRepo := pg.NewPostgresOrderRepo(pool)
	cartRepo := pg.NewPostgresCartRepo(pool)

	// Catalog reads ride the Redis cache; writes invalidate through the
	// decorators.
	categoryRepo := pg.NewCategoryRepoCacheDecorator(pg.NewPostgresCategoryRepo(pool), redisClient, cfg.Redis.CacheTTL)
	manufacturerRepo := pg.NewManufacturerRepoCacheDecorator(pg.NewPostgresManufacturerRepo(pool), redisClient, cfg.Redis.CacheTTL)
	locationRepo := pg.NewLocationRepoCacheDecorator(pg.NewPostgresLocationRepo(pool), redisClient, cfg.Redis.CacheTTL)

	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, tm, logger)
	catalogUC := usecase.NewCatalogUseCase(categoryRepo, manufacturerRepo, locationRepo, logger)
	productUC := usecase.NewProductUseCase(productRepo, logger)
	stockUC := usecase.NewStockUseCase(stockRepo, tm, logger)
	orderUC := usecase.NewOrderUseCase(orderRepo, cartRepo, stockRepo, productRepo, tm, locker, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, productRepo, stockRepo, orderRepo, logger)

	// ---- i18n ----
	locales, err := i18n.NewBundle(i18n.LocalesFS, "en", "ru", "pl")
	if err != nil {
		logger.Fatal().Err(err).Msg("locales")
	}

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, catalogUC, productUC, stockUC, orderUC, statsUC, locales)

	// ---- Telegram ----
	if cfg.Bot.Token == "" {
		logger.Warn().Msg("bot token not configured; running web dashboard only")
	} else {
		if strings.ToLower(cfg.Bot.Mode) != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
		}
		botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, stateRepo, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		go func() {
			if err := botAdapter.StartPolling(ctx); err != nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Web dashboard ----
	srv := web.NewServer(&cfg.Web, userUC, catalogUC, productUC, stockUC, orderUC, statsUC, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Web.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("web dashboard listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("web server error")
		}
	}()

	// ---- Order reaper ----
	reaper := sched.NewOrderReaper(cfg.Orders.ReapInterval, cfg.Orders.StaleAge, orderUC, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("web server shutdown")
	}
}
