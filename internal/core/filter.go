package core

import "strings"

// PageSize is the number of athletes per roster page.
const PageSize = 100

// AthleteFilter narrows a roster listing. Zero values match everything.
type AthleteFilter struct {
	Query   string // Case-insensitive substring of name, dojo or belt
	Day     Day
	Belt    Belt
	Gender  Gender
	CoachID int64
	Page    int // 1-based
}

// AthletePage is one page of a filtered roster.
type AthletePage struct {
	Athletes []Athlete
	Total    int
	Page     int
	Pages    int
}

// Matches reports whether a satisfies the filter.
func (f AthleteFilter) Matches(a Athlete) bool {
	if f.Day != "" && a.Day != f.Day {
		return false
	}
	if f.Belt != "" && a.Belt != f.Belt {
		return false
	}
	if f.Gender != "" && a.Gender != f.Gender {
		return false
	}
	if f.CoachID != 0 && a.CoachID != f.CoachID {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.Dojo), q) ||
		strings.Contains(strings.ToLower(string(a.Belt)), q)
}

// FilterAthletes returns the athletes matching f, keeping their order.
func FilterAthletes(list []Athlete, f AthleteFilter) []Athlete {
	out := make([]Athlete, 0, len(list))
	for _, a := range list {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	return out
}

// Paginate cuts list into PageSize pages and returns the requested one,
// clamped to the valid range.
func Paginate(list []Athlete, page int) AthletePage {
	pages := (len(list) + PageSize - 1) / PageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(list))

	return AthletePage{
		Athletes: list[start:end],
		Total:    len(list),
		Page:     page,
		Pages:    pages,
	}
}
