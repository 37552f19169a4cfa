// Package logging provides structured logging configuration using log/slog.
//
// It integrates with chi's RequestID middleware so that every log entry
// written while serving a request carries its request_id, and lets the
// auth middleware pin the acting coach to the request context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const attrsKey ctxKey = iota

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w. The CLI uses it to log to stderr.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWith returns a copy of ctx whose FromContext logger also carries args.
//
//	ctx = logging.ContextWith(ctx, "coach_id", coach.ID)
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(attrsKey).([]any)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey, merged)
}

// FromContext returns a logger enriched with request context.
//
// When the context carries a chi RequestID the logger includes request_id,
// plus any fields attached with ContextWith.
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("athlete registered", "unique_id", a.UniqueID)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if attrs, ok := ctx.Value(attrsKey).([]any); ok && len(attrs) > 0 {
		logger = logger.With(attrs...)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
//	importLogger := logging.WithFields(ctx,
//	    "import_id", importID,
//	    "coach_id", coachID,
//	)
//	importLogger.Info("import started")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
