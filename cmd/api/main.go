package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/springzlabs/springz-backend/api/controllers"
	"github.com/springzlabs/springz-backend/api/routes"
	addresssvc "github.com/springzlabs/springz-backend/internal/address"
	"github.com/springzlabs/springz-backend/internal/analytics"
	"github.com/springzlabs/springz-backend/internal/auth"
	cartsvc "github.com/springzlabs/springz-backend/internal/cart"
	"github.com/springzlabs/springz-backend/internal/catalog"
	"github.com/springzlabs/springz-backend/internal/checkout"
	ordersvc "github.com/springzlabs/springz-backend/internal/orders"
	settingssvc "github.com/springzlabs/springz-backend/internal/settings"
	usersvc "github.com/springzlabs/springz-backend/internal/users"
	"github.com/springzlabs/springz-backend/pkg/auth/session"
	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/db"
	"github.com/springzlabs/springz-backend/pkg/instance"
	"github.com/springzlabs/springz-backend/pkg/logger"
	"github.com/springzlabs/springz-backend/pkg/metrics"
	"github.com/springzlabs/springz-backend/pkg/migrate"
	"github.com/springzlabs/springz-backend/pkg/outbox"
	"github.com/springzlabs/springz-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	userRepo := usersvc.NewRepository(gdb)
	catalogRepo := catalog.NewRepository(gdb)
	cartRepo := cartsvc.NewRepository(gdb)
	addressRepo := addresssvc.NewRepository(gdb)
	orderRepo := ordersvc.NewRepository(gdb)
	settingsRepo := settingssvc.NewRepository(gdb)
	outboxService := outbox.NewService(outbox.NewRepository(gdb), logg)

	authService, err := auth.NewService(userRepo, sessionManager, cfg.JWT, cfg.Password, logg)
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}
	userService, err := usersvc.NewService(userRepo, logg)
	if err != nil {
		fatal(logg, "failed to create user service", err)
	}
	catalogService, err := catalog.NewService(catalogRepo, dbClient, logg)
	if err != nil {
		fatal(logg, "failed to create catalog service", err)
	}
	cartService, err := cartsvc.NewService(cartRepo, catalogRepo, dbClient, logg)
	if err != nil {
		fatal(logg, "failed to create cart service", err)
	}
	addressService, err := addresssvc.NewService(addressRepo, dbClient, logg)
	if err != nil {
		fatal(logg, "failed to create address service", err)
	}
	checkoutService, err := checkout.NewService(cartRepo, addressRepo, catalogRepo, orderRepo, dbClient, outboxService, cfg.Shipping, logg)
	if err != nil {
		fatal(logg, "failed to create checkout service", err)
	}
	orderService, err := ordersvc.NewService(orderRepo, dbClient, outboxService, logg)
	if err != nil {
		fatal(logg, "failed to create order service", err)
	}
	settingsService, err := settingssvc.NewService(settingsRepo, logg)
	if err != nil {
		fatal(logg, "failed to create settings service", err)
	}
	analyticsService, err := analytics.NewService(gdb, logg)
	if err != nil {
		fatal(logg, "failed to create analytics service", err)
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		Redis:       redisClient,
		Sessions:    sessionManager,
		HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Readiness: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Auth:      authService,
		Users:     userService,
		Catalog:   catalogService,
		Cart:      cartService,
		Addresses: addressService,
		Checkout:  checkoutService,
		Orders:    orderService,
		Settings:  settingsService,
		Analytics: analyticsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-signalCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during shutdown", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
