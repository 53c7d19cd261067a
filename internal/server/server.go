// Package server boots the storefront's runtime (store, cache, disks, log
// sinks) and runs the HTTP and gRPC servers until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Runtime holds the long-lived connections shared by every command.
type Runtime struct {
	Store   repositories.Store
	Cache   cache.Store
	Storage *storage.Manager

	closers []func()
}

// Boot loads configuration, installs the logger and opens the store. The
// cache and disks are only needed by `serve` and are opened lazily by
// Kernel.
func Boot(ctx context.Context) (*Runtime, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	logger.Setup(config.AppEnv())

	store, err := OpenStore(ctx, config.StoreDriver())
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Store: store}
	rt.closers = append(rt.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			logger.Warn("store: close failed", "error", err)
		}
	})

	if ms, ok := store.(*repositories.MongoStore); ok && config.LogToMongo() {
		sink := logger.NewMongoHandler(ctx, ms.Database(), "logs")
		logger.Setup(config.AppEnv(), slog.Handler(sink))
		// Flush the sink before the store disconnects.
		rt.closers = append([]func(){sink.Close}, rt.closers...)
	}

	logger.Info("store ready", "driver", store.Driver())
	return rt, nil
}

// OpenStore connects the store adapter named by driver.
func OpenStore(ctx context.Context, driver string) (repositories.Store, error) {
	switch driver {
	case "mongo":
		db, err := database.ConnectMongo(ctx, config.MongoURI(), config.MongoDatabase())
		if err != nil {
			return nil, err
		}
		return repositories.NewMongoStore(db), nil
	case "sql":
		db, err := database.OpenSQL(config.DatabaseDriver(), config.DatabaseDSN())
		if err != nil {
			return nil, err
		}
		return repositories.NewGormStore(db), nil
	case "memory":
		return repositories.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("server: unknown store driver %q", driver)
	}
}

// Kernel builds the HTTP kernel on top of the runtime, connecting the cache
// and storage disks on first use.
func (rt *Runtime) Kernel(ctx context.Context) (*kernel.HTTPKernel, error) {
	if rt.Cache == nil {
		if config.CacheDriver() == "redis" {
			rt.Cache = cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
		} else {
			rt.Cache = cache.NewMemory()
		}
	}
	if rt.Storage == nil {
		rt.Storage = storage.Connect(ctx)
	}
	return kernel.NewHTTPKernel(kernel.FromConfig(rt.Store, rt.Cache, rt.Storage.Default()))
}

// Close releases everything Boot opened, most recent first.
func (rt *Runtime) Close() {
	for _, fn := range rt.closers {
		fn()
	}
	rt.closers = nil
}

// Start migrates the store, then serves HTTP on APP_PORT and gRPC on
// GRPC_PORT until SIGINT or SIGTERM. In-flight requests get
// SHUTDOWN_TIMEOUT to finish.
func Start(rt *Runtime) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Store.Migrate(ctx); err != nil {
		return fmt.Errorf("server: migrate: %w", err)
	}

	k, err := rt.Kernel(ctx)
	if err != nil {
		return err
	}

	grpcSrv, err := grpc.Start(config.GRPCPort(), rt.Store.Ping)
	if err != nil {
		return err
	}
	defer grpc.Stop(grpcSrv)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr, "env", config.AppEnv())
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

	logger.Info("shutting down", "timeout", config.ShutdownTimeout().String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
