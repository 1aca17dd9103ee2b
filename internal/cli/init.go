// Package cli provides the shared startup and shutdown steps of the tracker commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tracker/internal/backend"
	"tracker/internal/cache"
	"tracker/internal/config"
	applog "tracker/internal/log"
	"tracker/internal/services"
)

// SetupLogger builds the application logger at the given level and installs it
// as the slog default.
func SetupLogger(level string, out io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App is a fully wired tracker: storage backend, dashboard memo and service.
type App struct {
	Config  *config.Config
	Logger  *applog.Logger
	Service *services.TrackerService
	Caches  *cache.Manager
	Backend *backend.BackendResult
}

// InitApp opens the configured backend and loads persisted state into a new service.
func InitApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{
		services.WithLogger(logger.WithComponent(applog.ComponentService)),
	}
	manager := cache.NewManager(logger.WithComponent(applog.ComponentCache))
	if cfg.CacheEnabled() {
		memo := cache.NewLRUCache[services.Dashboard](cfg.CacheSize, cfg.CacheTTL)
		manager.Register(memo)
		opts = append(opts, services.WithCache(memo))
	}

	svc := services.NewTrackerService(res.KV, opts...)
	if err := svc.Load(ctx); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	logger.Info("Application initialized",
		applog.FieldBackend, res.Type,
		"categories", svc.Catalog().Len(),
		"cache_enabled", cfg.CacheEnabled())

	return &App{Config: cfg, Logger: logger, Service: svc, Caches: manager, Backend: res}, nil
}

// Close stops background cache cleanup and releases the backend.
func (a *App) Close() error {
	a.Caches.Stop()
	return a.Backend.Close()
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
