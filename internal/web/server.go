// Package web provides the HTTP API and status page for EntryDesk.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/entrydesk/internal/auth"
	"github.com/JonMunkholm/entrydesk/internal/config"
	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/logging"
	"github.com/JonMunkholm/entrydesk/internal/metrics"
	"github.com/JonMunkholm/entrydesk/internal/web/middleware"
)

// HealthChecker reports whether an optional dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server is the HTTP server for EntryDesk.
type Server struct {
	service *core.Service
	tokens  *auth.Manager
	metrics *metrics.Metrics
	cfg     *config.Config
	checks  map[string]HealthChecker

	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
	uploads *rateLimiter
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithMetrics instruments requests and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealthCheck adds a named dependency to /healthz.
func WithHealthCheck(name string, c HealthChecker) Option {
	return func(s *Server) { s.checks[name] = c }
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, tokens *auth.Manager, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		tokens:  tokens,
		cfg:     cfg,
		checks:  make(map[string]HealthChecker),
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.uploads = newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleStatusPage)
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.authenticate))

			r.Get("/me", s.handleMe)
			r.Get("/registration", s.handleRegistration)

			r.Get("/athletes", s.handleListAthletes)
			r.Post("/athletes", s.handleCreateAthlete)
			r.Post("/athletes/bulk-delete", s.handleBulkDelete)
			r.Put("/athletes/{id}", s.handleUpdateAthlete)
			r.Delete("/athletes/{id}", s.handleDeleteAthlete)

			r.Group(func(r chi.Router) {
				if s.uploads != nil {
					r.Use(s.uploads.middleware)
				}
				r.Post("/uploads", s.handleUpload)
				r.Post("/uploads/preview", s.handlePreview)
			})

			r.Get("/template", s.handleTemplate)
			r.Get("/export", s.handleExport)
			r.Get("/stats", s.handleStats)
			r.Get("/coaches", s.handleListCoaches)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.uploads != nil {
		s.uploads.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
