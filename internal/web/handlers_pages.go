package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/logging"
	"github.com/JonMunkholm/entrydesk/internal/web/templates"
)

const pageTitle = "EntryDesk"

// handleStatusPage renders the public landing page: the registration banner
// and tournament-wide totals.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reg := s.service.Registration()

	params := templates.StatusParams{
		Title:         pageTitle,
		WritesEnabled: reg.WritesEnabled,
	}
	switch {
	case reg.Countdown != nil:
		params.Banner = reg.Countdown.String()
	case !reg.WritesEnabled:
		params.Banner = "Registration has closed."
	default:
		params.Banner = "Registration is open."
	}

	// Totals only; the organizer view is needed to count every roster.
	stats, err := s.service.Stats(ctx, core.Actor{Admin: true})
	if err != nil {
		logging.FromContext(ctx).Warn("status page stats unavailable", "error", err)
	} else {
		params.Athletes = stats.Total
		params.Saturday = stats.Saturday
		params.Sunday = stats.Sunday
		params.Coaches = stats.CoachCount
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.StatusPage(params).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render status page", "error", err)
	}
}

type healthResponse struct {
	Status        string                    `json:"status"`
	WritesEnabled bool                      `json:"writes_enabled"`
	Checks        map[string]string         `json:"checks,omitempty"`
	Uploads       *core.UploadLimiterStatus `json:"uploads,omitempty"`
}

// handleHealth reports liveness plus the state of optional dependencies.
// A failing dependency degrades the status but keeps the 200 so that the
// core roster service stays in rotation.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", WritesEnabled: s.service.WritesEnabled()}
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for name, c := range s.checks {
		if err := c.Health(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Uploads = &st
	}
	writeJSON(w, r, http.StatusOK, resp)
}
