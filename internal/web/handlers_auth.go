package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/logging"
	"github.com/JonMunkholm/entrydesk/internal/web/middleware"
)

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Coach     coachView `json:"coach"`
}

type coachView struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

func viewOfCoach(c core.Coach) coachView {
	return coachView{ID: c.ID, Email: c.Email, Name: c.Name, IsAdmin: c.IsAdmin}
}

// handleLogin signs a coach in with an asserted email, creating the coach on
// first sign-in. It is only mounted when demo login is enabled.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Auth.DemoLogin {
		http.NotFound(w, r)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respondError(w, r, errBadRequest)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	coach, err := s.service.SignIn(ctx, req.Email, req.Name, "")
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, expires, err := s.tokens.Issue(coach)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	logging.FromContext(ctx).Info("coach signed in", "coach_id", coach.ID, "admin", coach.IsAdmin)
	writeJSON(w, r, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires, Coach: viewOfCoach(coach)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, viewOfCoach(coachFrom(r.Context())))
}

func (s *Server) handleRegistration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Registration())
}
