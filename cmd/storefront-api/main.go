package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/config"
	"github.com/jcmexdev/storefront/internal/pkg/constants"
	"github.com/jcmexdev/storefront/internal/pkg/database"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/service"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/auth"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/memory"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/postgres"
	"github.com/jcmexdev/storefront/internal/storefront/infra/events"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx"
)

const (
	shutdownTimeout      = 10 * time.Second
	memorySagaLogEntries = 10000
)

func main() {
	cfg := config.Load()
	logger := telemetry.InitLogger(cfg.LogLevel, cfg.Telemetry.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("storefront api stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Telemetry.TracingEnabled {
		shutdown, err := telemetry.SetupTracer(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	gateway, closeGateway, err := openGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeGateway()

	kv := openCache(ctx, cfg, logger)

	sagaLog, closeSagaLog, err := openSagaLog(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSagaLog()

	checkoutOpts := []service.CheckoutOption{
		service.WithSagaLog(sagaLog),
		service.WithIdempotencyCache(kv, cfg.Checkout.IdempotencyTTL),
		service.WithClearCartDelay(cfg.Checkout.ClearCartDelay),
		service.WithCheckoutLogger(logger),
	}
	if cfg.AMQP.URL != "" {
		conn, err := events.Dial(cfg.AMQP.URL)
		if err != nil {
			return err
		}
		defer conn.Close()
		publisher, err := events.NewPublisher(conn, cfg.Telemetry.ServiceName)
		if err != nil {
			return err
		}
		defer publisher.Close()
		checkoutOpts = append(checkoutOpts, service.WithEventPublisher(publisher))
		logger.Info("publishing order events", "exchange", events.EventsExchange)
	}

	handler := httpx.NewHandler(
		auth.NewProvider(gateway, kv, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		service.NewCatalogService(gateway),
		service.NewCartService(gateway),
		service.NewFavoriteService(gateway),
		service.NewOrderService(gateway),
		service.NewCheckoutService(gateway, checkoutOpts...),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(httpx.NewRouter(handler), "storefront-api"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront api running", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openGateway(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Gateway, func(), error) {
	if cfg.Database.DSN == "" {
		logger.Warn("DATABASE_DSN not set, serving the demo catalog from memory")
		return memory.NewDemoGateway(), func() {}, nil
	}

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(cfg.Database.DSN, logger); err != nil {
			return nil, nil, err
		}
	}
	pool, err := database.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewGateway(pool), pool.Close, nil
}

func openCache(ctx context.Context, cfg config.Config, logger *slog.Logger) cache.Cache {
	if cfg.Cache.RedisAddr != "" {
		c := cache.NewRedisCache(cfg.Cache.RedisAddr, constants.ServiceName)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := cache.Ping(pingCtx, c)
		if err == nil {
			return c
		}
		logger.Warn("redis unreachable, using in-memory cache", "addr", cfg.Cache.RedisAddr, "error", err)
	}
	return cache.NewMemoryCache(constants.ServiceName)
}

func openSagaLog(cfg config.Config, logger *slog.Logger) (sagalog.Repository, func(), error) {
	if cfg.SagaLog.Path == "" {
		logger.Warn("SAGA_LOG_PATH not set, keeping only the latest saga log entries in memory",
			"max_entries", memorySagaLogEntries)
		return sagalog.NewMemoryRepository(sagalog.WithMaxEntries(memorySagaLogEntries)), func() {}, nil
	}
	repo, err := sqlite.Open(cfg.SagaLog.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("saga log persisted", "path", cfg.SagaLog.Path)
	return repo, func() {
		if err := repo.Close(); err != nil {
			logger.Error("close saga log", "error", err)
		}
	}, nil
}
