package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bistro-hq/bistro/internal/app"
	"github.com/bistro-hq/bistro/internal/auth"
	"github.com/bistro-hq/bistro/internal/observability"
	"github.com/bistro-hq/bistro/internal/platform/cache"
	"github.com/bistro-hq/bistro/internal/platform/db"
	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/seed"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			return serve(commandContext(cmd), e)
		},
	}
}

func serve(ctx context.Context, e env) error {
	cfg, logger := e.cfg, e.logger

	pool, err := db.New(ctx, db.Options{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	if cfg.MigrateOnStart {
		if err := applyMigrations(ctx, logger, pool); err != nil {
			return err
		}
	}

	metrics := observability.NewMetrics()
	store := rbac.NewPGStore(pool)
	passwords := auth.BcryptHasher{}

	if cfg.SeedOnStart {
		// A failed phase is logged and startup continues with whatever
		// the other phases provisioned.
		report := seed.NewSeeder(store, passwords, logger).WithObserver(metrics).Run(ctx)
		if err := report.Err(); err != nil {
			logger.Warn("seed incomplete", slog.Any("failed", report.Failed()), slog.Any("error", err))
		}
	}

	handler := app.NewHandler(app.Deps{
		Logger:    logger,
		Config:    cfg,
		Store:     store,
		Redis:     redisClient,
		Metrics:   metrics,
		Passwords: passwords,
		Health: map[string]app.Pinger{
			"postgres": pool,
			"redis":    app.PingFunc(func(ctx context.Context) error { return redisPing(ctx, redisClient) }),
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func redisPing(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
