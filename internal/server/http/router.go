package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Carts          CartService
	Orders         OrderService
	Catalog        Catalog
	Auth           AuthService
	Newsletter     Newsletter
	Metrics        *metrics.ServerMetrics
	Glyph          string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter mounts the storefront API under /api, with /health and /metrics at the root.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	carts := NewCartHandler(cfg.Carts, logger)
	var onPlaced func()
	if cfg.Metrics != nil {
		onPlaced = cfg.Metrics.OrdersPlaced.Inc
	}
	orders := NewOrdersHandler(cfg.Orders, onPlaced, logger)
	products := NewProductHandler(cfg.Catalog, cfg.Glyph, logger)
	auth := NewAuthHandler(cfg.Auth, logger)
	newsletter := NewNewsletterHandler(cfg.Newsletter, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", products.ListProducts)
		r.Post("/auth/login", auth.Login)
		r.Post("/auth/register", auth.Register)
		r.Post("/newsletter/subscribe", newsletter.Subscribe)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Auth, logger))

			r.Post("/auth/logout", auth.Logout)
			r.Put("/users/profile-update", auth.UpdateProfile)

			r.Get("/cart", carts.GetCart)
			r.Post("/cart", carts.AddItem)
			r.Delete("/cart/{id}", carts.RemoveItem)

			r.Post("/orders", orders.CreateOrder)
			r.Get("/orders", orders.ListOrders)
			r.Get("/orders/{id}", orders.GetOrder)
		})
	})
	return r
}
