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
	"go.uber.org/multierr"

	"github.com/angelmondragon/graingrove-backend/api/routes"
	"github.com/angelmondragon/graingrove-backend/internal/cart"
	"github.com/angelmondragon/graingrove-backend/internal/catalog"
	"github.com/angelmondragon/graingrove-backend/internal/checkout"
	"github.com/angelmondragon/graingrove-backend/internal/orders"
	pricing "github.com/angelmondragon/graingrove-backend/pkg/checkout"
	"github.com/angelmondragon/graingrove-backend/pkg/config"
	"github.com/angelmondragon/graingrove-backend/pkg/db"
	"github.com/angelmondragon/graingrove-backend/pkg/instance"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
	"github.com/angelmondragon/graingrove-backend/pkg/metrics"
	"github.com/angelmondragon/graingrove-backend/pkg/migrate"
	"github.com/angelmondragon/graingrove-backend/pkg/outbox"
	"github.com/angelmondragon/graingrove-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		_ = dbClient.Close()
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing api dependencies", err)
		}
	}()

	reg := prometheus.NewRegistry()
	storefrontMetrics := metrics.NewStorefrontMetrics(reg)
	policy := pricing.PolicyFromConfig(cfg.Shipping)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		return
	}

	snapshots, err := cart.NewRedisSnapshots(redisClient, cfg.Cart.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart snapshot store", err)
		return
	}
	cartManager, err := cart.NewManager(snapshots, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		return
	}
	cartService, err := cart.NewService(cartManager, catalogService, storefrontMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		return
	}

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		return
	}

	stateStore, err := checkout.NewRedisStateStore(redisClient, cfg.Checkout.StateTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout state store", err)
		return
	}
	locker, err := checkout.NewRedisLocker(redisClient, cfg.Checkout.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout locker", err)
		return
	}
	checkoutFlow, err := checkout.NewFlow(checkout.FlowParams{
		Carts:         cartManager,
		Orders:        ordersService,
		States:        stateStore,
		Locker:        locker,
		Policy:        policy,
		SubmitTimeout: cfg.Checkout.SubmitTimeout,
		Metrics:       storefrontMetrics,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout flow", err)
		return
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			reg,
			catalogService,
			cartService,
			checkoutFlow,
			policy,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "api server shutdown failed", err)
		return
	}
	logg.Info(ctx, "api server shut down gracefully")
}
