package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-storefront-bot/internal/config"
	"telegram-storefront-bot/internal/usecase"
)

//go:embed static
var staticFS embed.FS

// Server is the thin admin dashboard: a JSON API behind a JWT session plus
// the embedded single-page frontend.
type Server struct {
	cfg     *config.WebConfig
	auth    *AuthManager
	users   usecase.UserUseCase
	catalog usecase.CatalogUseCase
	prods   usecase.ProductUseCase
	stock   usecase.StockUseCase
	orders  usecase.OrderUseCase
	stats   usecase.StatsUseCase
	log     *zerolog.Logger
}

func NewServer(
	cfg *config.WebConfig,
	users usecase.UserUseCase,
	catalog usecase.CatalogUseCase,
	prods usecase.ProductUseCase,
	stock usecase.StockUseCase,
	orders usecase.OrderUseCase,
	stats usecase.StatsUseCase,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		cfg:     cfg,
		auth:    NewAuthManager(cfg.JWTSecret, cfg.SecureCookie, cfg.SessionTTL),
		users:   users,
		catalog: catalog,
		prods:   prods,
		stock:   stock,
		orders:  orders,
		stats:   stats,
		log:     logger,
	}
}

// Router builds the full route tree. The caller owns the http.Server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/login", s.handleLogin)
	r.Post("/api/v1/logout", s.handleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAdmin)

		pr.Get("/api/v1/stats", s.handleStats)

		pr.Route("/api/v1/products", func(pp chi.Router) {
			pp.Get("/", s.handleProductList)
			pp.Post("/", s.handleProductCreate)
			pp.Get("/{id}", s.handleProductGet)
			pp.Put("/{id}", s.handleProductUpdate)
			pp.Delete("/{id}", s.handleProductDelete)
			pp.Put("/{id}/localizations/{lang}", s.handleProductLocalization)
			pp.Get("/{id}/stock", s.handleProductStock)
		})

		pr.Post("/api/v1/stock/adjust", s.handleStockAdjust)
		pr.Post("/api/v1/stock/set", s.handleStockSet)

		pr.Get("/api/v1/orders", s.handleOrderList)
		pr.Get("/api/v1/orders/{id}", s.handleOrderGet)
		pr.Put("/api/v1/orders/{id}/status", s.handleOrderStatus)

		pr.Get("/api/v1/users", s.handleUserList)
		pr.Put("/api/v1/users/{id}/blocked", s.handleUserBlocked)

		pr.Get("/api/v1/locations", s.handleLocationList)
		pr.Get("/api/v1/categories", s.handleCategoryList)
		pr.Get("/api/v1/manufacturers", s.handleManufacturerList)
	})

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/*", http.FileServer(http.FS(static)))

	return r
}

// requireAdmin gates the API behind a valid session token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.JWTSecret == "" {
			s.log.Error().Msg("web jwt secret is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Msg("http request")
	})
}
