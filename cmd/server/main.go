package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/entrydesk/internal/app"
	"github.com/JonMunkholm/entrydesk/internal/auth"
	"github.com/JonMunkholm/entrydesk/internal/config"
	"github.com/JonMunkholm/entrydesk/internal/logging"
	"github.com/JonMunkholm/entrydesk/internal/metrics"
	"github.com/JonMunkholm/entrydesk/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.Scheme(),
		"writes_enabled", cfg.Registration.WritesEnabled,
		"dedup_mode", cfg.Dedup.Mode,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	a, err := app.New(ctx, cfg, m, slog.Default())
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	opts := []web.Option{web.WithMetrics(m)}
	if a.Cache != nil {
		opts = append(opts, web.WithHealthCheck("redis", a.Cache))
	}
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	server := web.NewServer(a.Service, tokens, cfg, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let running imports finish before the listener goes away.
		limiter := a.Service.Limiter()
		if st := limiter.Status(); st.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", st.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if cerr := a.Close(); cerr != nil {
		slog.Warn("close failed", "error", cerr)
	}
	if err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
