package web

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

// serveFile buffers a generated spreadsheet so that a failure can still be
// reported as a JSON error instead of a truncated download.
func serveFile(w http.ResponseWriter, r *http.Request, format core.Format, name string, write func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleTemplate downloads the blank upload template.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	format := core.ParseFormat(r.URL.Query().Get("format"))
	serveFile(w, r, format, "athlete_template."+string(format), func(buf *bytes.Buffer) error {
		return s.service.Template(buf, format)
	})
}

// handleExport downloads the caller's roster, or every roster for organizers.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := core.ParseFormat(r.URL.Query().Get("format"))
	name := fmt.Sprintf("athletes_%s.%s", time.Now().Format("20060102"), format)
	actor := s.actor(r)
	serveFile(w, r, format, name, func(buf *bytes.Buffer) error {
		return s.service.Export(r.Context(), buf, actor, format)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context(), s.actor(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleListCoaches(w http.ResponseWriter, r *http.Request) {
	coaches, err := s.service.ListCoaches(r.Context(), s.actor(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]coachView, len(coaches))
	for i, c := range coaches {
		c.IsAdmin = s.service.ActorFor(c).Admin
		out[i] = viewOfCoach(c)
	}
	writeJSON(w, r, http.StatusOK, out)
}
