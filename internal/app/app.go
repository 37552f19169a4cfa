// Package app wires configuration into a ready Service with its store and
// optional collaborators. The server and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/entrydesk/internal/audit"
	"github.com/JonMunkholm/entrydesk/internal/cache"
	"github.com/JonMunkholm/entrydesk/internal/config"
	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/metrics"
	"github.com/JonMunkholm/entrydesk/internal/store"
)

// App holds the wired components. Cache and Kafka are nil when not configured.
type App struct {
	Config  *config.Config
	Store   core.Store
	Service *core.Service
	Metrics *metrics.Metrics
	Cache   *cache.StatsCache
	Kafka   *audit.KafkaPublisher
}

// New opens the store and builds the service described by cfg. A nil m
// leaves the service uninstrumented.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *slog.Logger) (*App, error) {
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a := &App{Config: cfg, Store: st, Metrics: m}

	opts, err := ServiceOptions(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if a.Cache, err = cache.New(ctx, cfg.Redis); err != nil {
		a.Close()
		return nil, err
	}
	if a.Cache != nil {
		opts.Cache = a.Cache
		log.Info("stats cache enabled", "ttl", cfg.Redis.StatsTTL)
	}

	publishers := audit.Fanout{audit.NewLogPublisher(log)}
	if a.Kafka, err = audit.NewKafkaPublisher(cfg.Kafka); err != nil {
		a.Close()
		return nil, err
	}
	if a.Kafka != nil {
		publishers = append(publishers, a.Kafka)
		log.Info("kafka audit enabled", "topic", cfg.Kafka.Topic, "brokers", len(cfg.Kafka.Brokers))
	}
	opts.Audit = publishers

	if m != nil {
		opts.Metrics = m
	}

	a.Service = core.NewService(st, opts)
	if m != nil {
		m.TrackLimiter(a.Service.Limiter())
		m.TrackWrites(a.Service.WritesEnabled)
	}
	return a, nil
}

// ServiceOptions translates cfg into core.Options, without collaborators
// that need a connection.
func ServiceOptions(cfg *config.Config) (core.Options, error) {
	opts := core.Options{
		WritesEnabled:    cfg.Registration.WritesEnabled,
		DedupMode:        core.DedupMode(cfg.Dedup.Mode),
		GlobalCoachScope: cfg.Dedup.CoachScope == "global",
		Access: core.AccessPolicy{
			AdminEmails:      cfg.Auth.AdminEmails,
			EnforceAllowlist: cfg.Auth.EnforceAllowlist,
			CoachEmails:      cfg.Auth.CoachEmails,
			CoachDomains:     cfg.Auth.CoachDomains,
		},
		ShowTimer:     cfg.Registration.ShowTimer,
		Limiter:       core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		UploadTimeout: cfg.Upload.Timeout,
		StatsTTL:      cfg.Redis.StatsTTL,
	}

	if cfg.Registration.ClosesAt != "" {
		loc, err := time.LoadLocation(cfg.Registration.Timezone)
		if err != nil {
			return opts, fmt.Errorf("registration timezone %q: %w", cfg.Registration.Timezone, err)
		}
		closes, err := core.ParseClosingTime(cfg.Registration.ClosesAt, loc)
		if err != nil {
			return opts, fmt.Errorf("registration closing time: %w", err)
		}
		opts.ClosesAt = &closes
	}
	return opts, nil
}

// Close releases the store and any optional connections.
func (a *App) Close() error {
	var errs []error
	if a.Kafka != nil {
		a.Kafka.Close()
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
