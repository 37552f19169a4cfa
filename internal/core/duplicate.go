package core

import "time"

// DedupMode selects which fields identify the same athlete.
type DedupMode string

const (
	// DedupNameDOBDojo compares name, date of birth and dojo.
	DedupNameDOBDojo DedupMode = "name_dob_dojo"
	// DedupNameDOB ignores the dojo, so namesakes born the same day at
	// different dojos collide.
	DedupNameDOB DedupMode = "name_dob"
)

// DuplicateScope narrows a duplicate search.
type DuplicateScope struct {
	CoachID   int64 // Only compare against this coach's athletes; 0 compares globally
	Mode      DedupMode
	ExcludeID int64 // Storage ID to ignore, used when editing an athlete
}

// FindDuplicate returns the first athlete in existing that matches candidate.
//
// Records must share the exact date of birth and, when scoped, the owning
// coach. The normalized names must match, and so must the normalized dojos
// unless the mode ignores dojo or the candidate has none. existing is
// scanned in order, so callers pass it sorted by UniqueID.
func FindDuplicate(candidate AthleteRecord, existing []Athlete, scope DuplicateScope) (Athlete, bool) {
	name := Normalize(candidate.Name)
	dojo := Normalize(candidate.Dojo)
	compareDojo := scope.Mode != DedupNameDOB && dojo != ""

	for _, a := range existing {
		if scope.ExcludeID != 0 && a.ID == scope.ExcludeID {
			continue
		}
		if !sameDate(a.DOB, candidate.DOB) {
			continue
		}
		if scope.CoachID != 0 && a.CoachID != scope.CoachID {
			continue
		}
		if Normalize(a.Name) != name {
			continue
		}
		if compareDojo && Normalize(a.Dojo) != dojo {
			continue
		}
		return a, true
	}
	return Athlete{}, false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
