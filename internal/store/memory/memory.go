// Package memory is an in-process core.Store. It backs memory:// database
// URLs and the service tests.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

// Store keeps coaches and athletes in maps guarded by one mutex. A
// transaction holds the mutex and works on a copy of the athlete map that
// replaces the original on commit.
type Store struct {
	mu          sync.Mutex
	coaches     map[int64]core.Coach
	athletes    map[int64]core.Athlete
	nextCoach   int64
	nextAthlete int64

	// BeforeInsert, when set, runs before every athlete insert and can fail it.
	BeforeInsert func(core.Athlete) error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		coaches:  make(map[int64]core.Coach),
		athletes: make(map[int64]core.Athlete),
	}
}

// InTx implements core.Store.
func (s *Store) InTx(ctx context.Context, fn func(tx core.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &tx{store: s, athletes: maps.Clone(s.athletes), next: s.nextAthlete}
	if err := fn(tx); err != nil {
		return err
	}
	s.athletes = tx.athletes
	s.nextAthlete = tx.next
	return nil
}

func (s *Store) GetCoach(_ context.Context, id int64) (core.Coach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coaches[id]
	if !ok {
		return core.Coach{}, core.ErrCoachNotFound
	}
	return c, nil
}

func (s *Store) GetCoachByEmail(_ context.Context, email string) (core.Coach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.coaches {
		if c.Email == email {
			return c, nil
		}
	}
	return core.Coach{}, core.ErrCoachNotFound
}

func (s *Store) CreateCoach(_ context.Context, c core.Coach) (core.Coach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.coaches {
		if existing.Email == c.Email {
			return core.Coach{}, core.ErrCoachExists
		}
	}
	s.nextCoach++
	c.ID = s.nextCoach
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.coaches[c.ID] = c
	return c, nil
}

func (s *Store) SetCoachAdmin(_ context.Context, id int64, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coaches[id]
	if !ok {
		return core.ErrCoachNotFound
	}
	c.IsAdmin = admin
	s.coaches[id] = c
	return nil
}

func (s *Store) ListCoaches(_ context.Context) ([]core.Coach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Collect(maps.Values(s.coaches))
	slices.SortFunc(out, func(a, b core.Coach) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetAthlete(_ context.Context, id int64) (core.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.athletes[id]
	if !ok {
		return core.Athlete{}, core.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAthletes(_ context.Context, coachID int64) ([]core.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.athletes, func(a core.Athlete) bool {
		return coachID == 0 || a.CoachID == coachID
	}), nil
}

func (s *Store) DeleteAthlete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.athletes[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.athletes, id)
	return nil
}

func (s *Store) Close() error { return nil }

type tx struct {
	store    *Store
	athletes map[int64]core.Athlete
	next     int64
}

func (t *tx) AthletesByDOB(_ context.Context, dob time.Time, coachID int64) ([]core.Athlete, error) {
	day := core.FormatDate(dob)
	return sorted(t.athletes, func(a core.Athlete) bool {
		return core.FormatDate(a.DOB) == day && (coachID == 0 || a.CoachID == coachID)
	}), nil
}

func (t *tx) MaxUniqueID(context.Context) (int64, error) {
	var maxID int64
	for _, a := range t.athletes {
		maxID = max(maxID, a.UniqueID)
	}
	return maxID, nil
}

func (t *tx) InsertAthlete(_ context.Context, a core.Athlete) (core.Athlete, error) {
	if t.store.BeforeInsert != nil {
		if err := t.store.BeforeInsert(a); err != nil {
			return core.Athlete{}, err
		}
	}
	for _, existing := range t.athletes {
		if existing.UniqueID == a.UniqueID {
			return core.Athlete{}, core.ErrUniqueIDConflict
		}
	}
	t.next++
	a.ID = t.next
	t.athletes[a.ID] = a
	return a, nil
}

func (t *tx) GetAthlete(_ context.Context, id int64) (core.Athlete, error) {
	a, ok := t.athletes[id]
	if !ok {
		return core.Athlete{}, core.ErrNotFound
	}
	return a, nil
}

func (t *tx) UpdateAthlete(_ context.Context, a core.Athlete) error {
	if _, ok := t.athletes[a.ID]; !ok {
		return core.ErrNotFound
	}
	t.athletes[a.ID] = a
	return nil
}

func sorted(m map[int64]core.Athlete, keep func(core.Athlete) bool) []core.Athlete {
	out := make([]core.Athlete, 0, len(m))
	for _, a := range m {
		if keep(a) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b core.Athlete) int { return cmp.Compare(a.UniqueID, b.UniqueID) })
	return out
}
