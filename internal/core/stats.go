package core

import (
	"context"
	"sort"
	"time"
)

// TopDojoLimit is how many dojos the organizer statistics list.
const TopDojoLimit = 10

// NamedCount is a label with a count, used for ranked lists.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CoachSummary is one row of the organizer's per-coach table.
type CoachSummary struct {
	CoachID  int64  `json:"coach_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Total    int    `json:"total"`
	Saturday int    `json:"saturday"`
	Sunday   int    `json:"sunday"`
}

// Stats aggregates a roster. Coach views leave the organizer fields empty.
type Stats struct {
	Total    int            `json:"total"`
	Saturday int            `json:"saturday"`
	Sunday   int            `json:"sunday"`
	ByBelt   map[string]int `json:"by_belt"`
	ByGender map[string]int `json:"by_gender"`

	TopDojos   []NamedCount   `json:"top_dojos,omitempty"`
	Coaches    []CoachSummary `json:"coaches,omitempty"`
	CoachCount int            `json:"coach_count,omitempty"`
}

// ComputeStats aggregates athletes. When coaches is non-nil the organizer
// fields are filled in as well.
func ComputeStats(athletes []Athlete, coaches []Coach) Stats {
	s := Stats{
		ByBelt:   make(map[string]int),
		ByGender: make(map[string]int),
	}
	dojos := make(map[string]int)
	dojoNames := make(map[string]string)
	perCoach := make(map[int64]*CoachSummary)

	for _, a := range athletes {
		s.Total++
		s.ByBelt[string(a.Belt)]++
		s.ByGender[string(a.Gender)]++

		key := Normalize(a.Dojo)
		dojos[key]++
		if _, ok := dojoNames[key]; !ok {
			dojoNames[key] = a.Dojo
		}

		cs := perCoach[a.CoachID]
		if cs == nil {
			cs = &CoachSummary{CoachID: a.CoachID}
			perCoach[a.CoachID] = cs
		}
		cs.Total++

		switch a.Day {
		case DaySaturday:
			s.Saturday++
			cs.Saturday++
		case DaySunday:
			s.Sunday++
			cs.Sunday++
		}
	}

	if coaches == nil {
		return s
	}

	s.CoachCount = len(coaches)
	for key, n := range dojos {
		s.TopDojos = append(s.TopDojos, NamedCount{Name: dojoNames[key], Count: n})
	}
	sort.Slice(s.TopDojos, func(i, j int) bool {
		if s.TopDojos[i].Count != s.TopDojos[j].Count {
			return s.TopDojos[i].Count > s.TopDojos[j].Count
		}
		return s.TopDojos[i].Name < s.TopDojos[j].Name
	})
	if len(s.TopDojos) > TopDojoLimit {
		s.TopDojos = s.TopDojos[:TopDojoLimit]
	}

	for _, c := range coaches {
		cs := CoachSummary{CoachID: c.ID, Name: c.Name, Email: c.Email}
		if counted := perCoach[c.ID]; counted != nil {
			cs.Total, cs.Saturday, cs.Sunday = counted.Total, counted.Saturday, counted.Sunday
		}
		s.Coaches = append(s.Coaches, cs)
	}
	sort.SliceStable(s.Coaches, func(i, j int) bool { return s.Coaches[i].Total > s.Coaches[j].Total })

	return s
}

// StatsCache stores computed statistics between writes.
type StatsCache interface {
	GetStats(ctx context.Context, key string) (*Stats, bool)
	SetStats(ctx context.Context, key string, s *Stats, ttl time.Duration)
	// InvalidateStats drops every cached entry after a roster change.
	InvalidateStats(ctx context.Context)
}
