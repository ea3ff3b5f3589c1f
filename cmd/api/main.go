package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/baxeinwear/storefront-backend/api/responses"
	"github.com/baxeinwear/storefront-backend/api/routes"
	"github.com/baxeinwear/storefront-backend/internal/auth"
	"github.com/baxeinwear/storefront-backend/internal/cart"
	"github.com/baxeinwear/storefront-backend/internal/categories"
	"github.com/baxeinwear/storefront-backend/internal/orders"
	"github.com/baxeinwear/storefront-backend/internal/payments"
	product "github.com/baxeinwear/storefront-backend/internal/products"
	"github.com/baxeinwear/storefront-backend/internal/sales"
	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/auth/session"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/db"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	"github.com/baxeinwear/storefront-backend/pkg/metrics"
	"github.com/baxeinwear/storefront-backend/pkg/migrate"
	"github.com/baxeinwear/storefront-backend/pkg/redis"
)

const (
	cartSaveLockScope = "cart_save"
	shutdownTimeout   = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	responses.SetDebug(cfg.App.IsDev())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	cartLocker, err := redis.NewKeyedLocker(redisClient, cartSaveLockScope, cfg.Checkout.CartLockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create cart lock", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := metrics.NewStoreMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	categoryRepo := categories.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	mustBuild(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	mustBuild(ctx, logg, "register service", err)

	categoryService, err := categories.NewService(categoryRepo)
	mustBuild(ctx, logg, "category service", err)

	productService, err := product.NewService(product.ServiceParams{
		Repo:       product.NewRepository(conn),
		DB:         dbClient,
		Accounts:   userRepo,
		Categories: categoryRepo,
		Logger:     logg,
	})
	mustBuild(ctx, logg, "product service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:     cartRepo,
		DB:       dbClient,
		Accounts: userRepo,
		Locker:   cartLocker,
		Metrics:  storeMetrics,
		Logger:   logg,
	})
	mustBuild(ctx, logg, "cart service", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Carts:    cartRepo,
		DB:       dbClient,
		Accounts: userRepo,
		Metrics:  storeMetrics,
		Logger:   logg,
	})
	mustBuild(ctx, logg, "orders service", err)

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:     payments.NewRepository(conn),
		Orders:   ordersRepo,
		DB:       dbClient,
		Accounts: userRepo,
		Checkout: cfg.Checkout,
		Metrics:  storeMetrics,
		Logger:   logg,
	})
	mustBuild(ctx, logg, "payments service", err)

	salesService, err := sales.NewService(sales.NewRepository(conn), userRepo)
	mustBuild(ctx, logg, "sales service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			registry,
			httpMetrics,
			authService,
			registerService,
			productService,
			categoryService,
			cartService,
			ordersService,
			paymentsService,
			salesService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
}

func mustBuild(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name, err)
	os.Exit(1)
}
