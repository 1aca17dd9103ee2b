package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tracker/internal/cli"
	apphttp "tracker/internal/http"
	applog "tracker/internal/log"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)

	ctx, cancel := cli.SignalContext(parent, logger)
	defer cancel()

	app, err := cli.InitApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", applog.FieldError, err)
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	}()

	if cfg.CacheEnabled() && cfg.CacheTTL > 0 {
		app.Caches.StartCleanup(ctx, cfg.CacheTTL)
	}

	srv := apphttp.NewServer(":"+cfg.Port, app.Service, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting tracker server",
			"port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
