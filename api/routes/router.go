package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/baxeinwear/storefront-backend/api/controllers"
	"github.com/baxeinwear/storefront-backend/api/middleware"
	"github.com/baxeinwear/storefront-backend/internal/auth"
	"github.com/baxeinwear/storefront-backend/internal/cart"
	"github.com/baxeinwear/storefront-backend/internal/categories"
	"github.com/baxeinwear/storefront-backend/internal/orders"
	"github.com/baxeinwear/storefront-backend/internal/payments"
	product "github.com/baxeinwear/storefront-backend/internal/products"
	"github.com/baxeinwear/storefront-backend/internal/sales"
	"github.com/baxeinwear/storefront-backend/pkg/auth/session"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/db"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	"github.com/baxeinwear/storefront-backend/pkg/metrics"
	"github.com/baxeinwear/storefront-backend/pkg/redis"
)

// CacheStore is the Redis surface the HTTP layer needs: readiness, rate
// limiting and idempotency records.
type CacheStore interface {
	redis.Pinger
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cache CacheStore,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	registerService auth.RegisterService,
	productService product.Service,
	categoryService categories.Service,
	cartService cart.Service,
	ordersService orders.Service,
	paymentsService payments.Service,
	salesService sales.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		httpMetrics.Middleware,
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	optionalAuth := middleware.Auth(cfg.JWT, sessions, middleware.AuthOptions{}, logg)
	memberAuth := middleware.Auth(cfg.JWT, sessions, middleware.AuthOptions{RequireToken: cfg.FeatureFlags.RequireAuthToken}, logg)
	idempotent := middleware.Idempotency(cache, cfg.Idempotency.TTL, logg)
	merchantOnly := middleware.RequireRole(string(enums.UserRoleMerchant), logg)
	customerOnly := middleware.RequireRole(string(enums.UserRoleCustomer), logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cache, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(middleware.LoginThrottle(cfg.AuthRateLimit), cache, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(middleware.RegisterThrottle(cfg.AuthRateLimit), cache, logg)).Post("/cadastro", controllers.AuthRegister(registerService, logg))

		// catalog reads stay public even when tokens are mandatory
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/products/list", controllers.ProductsList(productService, logg))
			r.Get("/categories/list", controllers.CategoriesList(categoryService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(memberAuth)

			r.With(middleware.RequireAuthenticated(logg)).Post("/logout", controllers.AuthLogout(authService, logg))

			r.Route("/products", func(r chi.Router) {
				r.Use(merchantOnly)
				r.Post("/register", controllers.ProductsRegister(productService, logg))
				r.Put("/update", controllers.ProductsUpdate(productService, logg))
				r.Delete("/delete", controllers.ProductsDelete(productService, logg))
			})

			r.Post("/categories/create", controllers.CategoriesCreate(categoryService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Use(customerOnly)
				r.Get("/list", controllers.CartList(cartService, logg))
				r.Post("/create", controllers.CartSave(cartService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(customerOnly, idempotent).Post("/create", controllers.OrdersCreate(ordersService, logg))
				r.Get("/list", controllers.OrdersList(ordersService, logg))
				r.Get("/{id}", controllers.OrderDetail(ordersService, logg))
				r.With(customerOnly, idempotent).Patch("/{id}", controllers.OrderAction(paymentsService, logg))
			})

			r.With(merchantOnly).Get("/sales/history", controllers.SalesHistory(salesService, logg))
		})
	})

	return r
}
