// Package audit delivers roster change events. The log publisher is always
// on; the Kafka publisher is added when brokers are configured.
package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

// LogPublisher writes audit events as structured log records.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger uses slog.Default.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger.With("component", "audit")}
}

// Publish implements core.AuditPublisher.
func (p *LogPublisher) Publish(ctx context.Context, e core.AuditEvent) error {
	attrs := []any{
		"audit_id", e.ID,
		"action", string(e.Action),
		"severity", string(e.Severity),
		"actor_id", e.ActorID,
		"coach_id", e.CoachID,
	}
	if e.Admin {
		attrs = append(attrs, "admin", true)
	}
	if e.UniqueID != 0 {
		attrs = append(attrs, "unique_id", e.UniqueID)
	}
	if e.ImportID != "" {
		attrs = append(attrs, "import_id", e.ImportID, "file", e.FileName, "accepted", e.Accepted, "rejected", e.Rejected)
	}
	if e.IPAddress != "" {
		attrs = append(attrs, "ip", e.IPAddress)
	}

	level := slog.LevelInfo
	if e.Severity == core.SeverityHigh {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "audit", attrs...)
	return nil
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []core.AuditPublisher

// Publish implements core.AuditPublisher.
func (f Fanout) Publish(ctx context.Context, e core.AuditEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
