package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

// athleteView is the JSON shape of an athlete.
type athleteView struct {
	ID        int64     `json:"id"`
	UniqueID  int64     `json:"unique_id"`
	CoachID   int64     `json:"coach_id"`
	Name      string    `json:"name"`
	DOB       string    `json:"dob"`
	Dojo      string    `json:"dojo"`
	Belt      string    `json:"belt"`
	Day       string    `json:"day"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
}

func viewOfAthlete(a core.Athlete) athleteView {
	return athleteView{
		ID:        a.ID,
		UniqueID:  a.UniqueID,
		CoachID:   a.CoachID,
		Name:      a.Name,
		DOB:       core.FormatDate(a.DOB),
		Dojo:      a.Dojo,
		Belt:      string(a.Belt),
		Day:       string(a.Day),
		Gender:    string(a.Gender),
		CreatedAt: a.CreatedAt,
	}
}

func viewsOfAthletes(list []core.Athlete) []athleteView {
	out := make([]athleteView, len(list))
	for i, a := range list {
		out[i] = viewOfAthlete(a)
	}
	return out
}

type athletePageView struct {
	Athletes []athleteView `json:"athletes"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Pages    int           `json:"pages"`
}

type createAthleteRequest struct {
	core.AthleteInput
	// CoachID lets organizers register for another coach.
	CoachID int64 `json:"coach_id,omitempty"`
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// canonicalParam maps a filter value like "sat" to its canonical form.
// Unknown values become a filter that matches nothing.
func canonicalParam(r *http.Request, field string) string {
	raw := r.URL.Query().Get(field)
	if raw == "" {
		return ""
	}
	if v, ok := core.Canonical(field, raw); ok {
		return v
	}
	return raw
}

// targetCoach resolves which roster a write applies to: the caller's own
// unless an organizer names another coach.
func targetCoach(actor core.Actor, requested int64) int64 {
	if requested != 0 {
		return requested
	}
	return actor.CoachID
}

func (s *Server) actor(r *http.Request) core.Actor {
	return s.service.ActorFor(coachFrom(r.Context()))
}

func (s *Server) handleListAthletes(w http.ResponseWriter, r *http.Request) {
	filter := core.AthleteFilter{
		Query:  r.URL.Query().Get("q"),
		Day:    core.Day(canonicalParam(r, "day")),
		Belt:   core.Belt(canonicalParam(r, "belt")),
		Gender: core.Gender(canonicalParam(r, "gender")),
		Page:   parseIntParam(r, "page", 1),
	}
	filter.CoachID = int64(parseIntParam(r, "coach", 0))

	page, err := s.service.SearchAthletes(r.Context(), s.actor(r), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, athletePageView{
		Athletes: viewsOfAthletes(page.Athletes),
		Total:    page.Total,
		Page:     page.Page,
		Pages:    page.Pages,
	})
}

func (s *Server) handleCreateAthlete(w http.ResponseWriter, r *http.Request) {
	var req createAthleteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respondError(w, r, errBadRequest)
		return
	}

	actor := s.actor(r)
	ctx := r.Context()
	a, err := s.service.CreateAthlete(ctx, actor, targetCoach(actor, req.CoachID), req.AthleteInput)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, viewOfAthlete(a))
}

func (s *Server) handleUpdateAthlete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, core.ErrNotFound)
		return
	}

	var in core.AthleteInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&in); err != nil {
		respondError(w, r, errBadRequest)
		return
	}

	a, err := s.service.UpdateAthlete(r.Context(), s.actor(r), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, viewOfAthlete(a))
}

func (s *Server) handleDeleteAthlete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, core.ErrNotFound)
		return
	}

	if err := s.service.DeleteAthlete(r.Context(), s.actor(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		respondError(w, r, errBadRequest)
		return
	}

	n, err := s.service.DeleteAthletes(r.Context(), s.actor(r), req.IDs)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"deleted": n})
}
