package core_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/store/memory"
)

type fixture struct {
	svc    *core.Service
	store  *memory.Store
	coachA core.Coach
	coachB core.Coach
	admin  core.Coach
	audit  *recordingAudit
}

type recordingAudit struct {
	mu     sync.Mutex
	events []core.AuditEvent
}

func (r *recordingAudit) Publish(_ context.Context, e core.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) actions() []core.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.AuditAction, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

func newFixture(t *testing.T, mutate func(*core.Options)) *fixture {
	t.Helper()
	store := memory.New()
	audit := &recordingAudit{}
	opts := core.Options{
		WritesEnabled: true,
		Access:        core.AccessPolicy{AdminEmails: []string{"chief@example.com"}},
		Audit:         audit,
	}
	if mutate != nil {
		mutate(&opts)
	}
	svc := core.NewService(store, opts)

	ctx := context.Background()
	a, err := svc.SignIn(ctx, "a@dojo.org", "Sensei A", "")
	require.NoError(t, err)
	b, err := svc.SignIn(ctx, "b@dojo.org", "Sensei B", "")
	require.NoError(t, err)
	admin, err := svc.SignIn(ctx, "chief@example.com", "Chief", "")
	require.NoError(t, err)

	return &fixture{svc: svc, store: store, coachA: a, coachB: b, admin: admin, audit: audit}
}

func (f *fixture) actor(c core.Coach) core.Actor { return f.svc.ActorFor(c) }

func input(name string) core.AthleteInput {
	return core.AthleteInput{Name: name, DOB: "2012-03-04", Dojo: "North Dojo", Belt: "green", Day: "sat", Gender: "f"}
}

func TestCreateAthlete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a, err := f.svc.CreateAthlete(ctx, f.actor(f.coachA), f.coachA.ID, input("  Mia Lopez "))
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.UniqueID)
	assert.Equal(t, f.coachA.ID, a.CoachID)
	assert.Equal(t, "Mia Lopez", a.Name)
	assert.Equal(t, core.BeltGreen, a.Belt)
	assert.Equal(t, core.DaySaturday, a.Day)
	assert.Equal(t, core.GenderFemale, a.Gender)
	assert.Contains(t, f.audit.actions(), core.ActionAthleteCreate)
}

func TestCreateAthlete_Validation(t *testing.T) {
	f := newFixture(t, nil)

	in := input("Mia")
	in.Belt = "red"
	_, err := f.svc.CreateAthlete(context.Background(), f.actor(f.coachA), f.coachA.ID, in)

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "belt", verr.Field)
	assert.Equal(t, "Invalid belt 'red'", err.Error())
}

func TestCreateAthlete_SequentialIDs(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	actor := f.actor(f.coachA)

	for i := 1; i <= 5; i++ {
		a, err := f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input(fmt.Sprintf("Athlete %d", i)))
		require.NoError(t, err)
		assert.Equal(t, int64(i), a.UniqueID)
	}

	list, err := f.svc.ListAthletes(ctx, f.coachA.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteAthlete(ctx, actor, list[1].ID))

	next, err := f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Athlete 6"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), next.UniqueID, "deleted IDs below the maximum are not reused")
}

func TestCreateAthlete_ConcurrentIDsAreUnique(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	const n = 20
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			coach := f.coachA
			if i%2 == 1 {
				coach = f.coachB
			}
			a, err := f.svc.CreateAthlete(ctx, f.actor(coach), coach.ID, input(fmt.Sprintf("Runner %d", i)))
			if err != nil {
				t.Errorf("CreateAthlete(%d) error = %v", i, err)
				return
			}
			ids <- a.UniqueID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "unique id %d allocated twice", id)
		seen[id] = true
	}
	for id := int64(1); id <= n; id++ {
		assert.True(t, seen[id], "unique id %d missing", id)
	}
}

func TestCreateAthlete_RetriesUniqueIDConflict(t *testing.T) {
	f := newFixture(t, nil)
	calls := 0
	f.store.BeforeInsert = func(core.Athlete) error {
		calls++
		if calls == 1 {
			return core.ErrUniqueIDConflict
		}
		return nil
	}

	a, err := f.svc.CreateAthlete(context.Background(), f.actor(f.coachA), f.coachA.ID, input("Mia"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.UniqueID)
	assert.Equal(t, 2, calls)
}

func TestCreateAthlete_Duplicate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	actor := f.actor(f.coachA)

	first, err := f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Mia Lopez"))
	require.NoError(t, err)

	again := input("  MIA   lopez")
	again.Dojo = "north  dojo"
	again.Belt = "black"
	_, err = f.svc.CreateAthlete(ctx, actor, f.coachA.ID, again)

	require.ErrorIs(t, err, core.ErrDuplicate)
	var dup *core.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.UniqueID, dup.Existing.UniqueID)
	assert.Equal(t, fmt.Sprintf("Duplicate athlete '%s' (ID: %d)", "MIA   lopez", first.UniqueID), err.Error())

	otherDojo := input("Mia Lopez")
	otherDojo.Dojo = "South Dojo"
	_, err = f.svc.CreateAthlete(ctx, actor, f.coachA.ID, otherDojo)
	assert.NoError(t, err, "a different dojo is a different athlete")
}

func TestCreateAthlete_DuplicateScope(t *testing.T) {
	ctx := context.Background()

	t.Run("coach scope", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.CreateAthlete(ctx, f.actor(f.coachA), f.coachA.ID, input("Mia"))
		require.NoError(t, err)

		_, err = f.svc.CreateAthlete(ctx, f.actor(f.admin), f.coachB.ID, input("Mia"))
		assert.ErrorIs(t, err, core.ErrDuplicate, "organizers check every roster")

		_, err = f.svc.CreateAthlete(ctx, f.actor(f.coachB), f.coachB.ID, input("Mia"))
		assert.NoError(t, err, "another coach's roster is not checked")
	})

	t.Run("global scope", func(t *testing.T) {
		f := newFixture(t, func(o *core.Options) { o.GlobalCoachScope = true })
		_, err := f.svc.CreateAthlete(ctx, f.actor(f.coachA), f.coachA.ID, input("Mia"))
		require.NoError(t, err)

		_, err = f.svc.CreateAthlete(ctx, f.actor(f.coachB), f.coachB.ID, input("Mia"))
		assert.ErrorIs(t, err, core.ErrDuplicate)
	})

	t.Run("name and dob mode", func(t *testing.T) {
		f := newFixture(t, func(o *core.Options) { o.DedupMode = core.DedupNameDOB })
		_, err := f.svc.CreateAthlete(ctx, f.actor(f.coachA), f.coachA.ID, input("Mia"))
		require.NoError(t, err)

		moved := input("Mia")
		moved.Dojo = "South Dojo"
		_, err = f.svc.CreateAthlete(ctx, f.actor(f.coachA), f.coachA.ID, moved)
		assert.ErrorIs(t, err, core.ErrDuplicate)
	})
}

func TestCreateAthlete_Access(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateAthlete(ctx, f.actor(f.coachA), f.coachB.ID, input("Mia"))
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.CreateAthlete(ctx, f.actor(f.admin), 999, input("Mia"))
	assert.ErrorIs(t, err, core.ErrCoachNotFound)

	a, err := f.svc.CreateAthlete(ctx, f.actor(f.admin), f.coachB.ID, input("Mia"))
	require.NoError(t, err)
	assert.Equal(t, f.coachB.ID, a.CoachID)
}

func TestWriteLock(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	actor := f.actor(f.coachA)

	a, err := f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Mia"))
	require.NoError(t, err)

	f.svc.SetWritesEnabled(false)
	assert.False(t, f.svc.WritesEnabled())

	_, err = f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Noah"))
	assert.ErrorIs(t, err, core.ErrWritesDisabled)

	_, err = f.svc.UploadSheet(ctx, actor, f.coachA.ID, "roster.csv", []byte(templateCSV))
	assert.ErrorIs(t, err, core.ErrWritesDisabled)

	err = f.svc.DeleteAthlete(ctx, actor, a.ID)
	assert.ErrorIs(t, err, core.ErrWritesDisabled)

	_, err = f.svc.UpdateAthlete(ctx, actor, a.ID, input("Mia B"))
	assert.ErrorIs(t, err, core.ErrWritesDisabled)

	list, err := f.svc.ListAthletes(ctx, f.coachA.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "reads stay available while closed")

	preview, err := f.svc.PreviewSheet(ctx, actor, f.coachA.ID, "roster.csv", []byte(templateCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, preview.Accepted)
}

const templateCSV = "Name,DOB,Dojo,Belt,Day,Gender\n" +
	"John Doe,2010-05-15,Main Dojo,White,Saturday,Male\n" +
	"Jane Smith,2011-08-22,East Dojo,Yellow,Sunday,Female\n"

func TestUploadSheet_PartialSuccess(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	actor := f.actor(f.coachA)

	existing, err := f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Mia Lopez"))
	require.NoError(t, err)

	f.store.BeforeInsert = func(a core.Athlete) error {
		if a.Name == "Bad Insert" {
			return errors.New("database is locked")
		}
		return nil
	}

	csv := "name,dob,dojo,belt,day,gender\n" +
		"Ava Chen,2013-01-02,North Dojo,White,Sat,F\n" + // row 2
		"Leo Park,2013-01-02,North Dojo,Red,Sat,M\n" + // row 3
		",,,,,\n" + // row 4
		"mia lopez,2012-03-04,North Dojo,Green,Sun,Girl\n" + // row 5
		"Bad Insert,2014-06-07,North Dojo,Blue,Sun,Boy\n" + // row 6
		"Ava Chen,2013-01-02,North Dojo,White,Sat,F\n" + // row 7
		"Zoe Diaz,2012-12-12,East Dojo,Black,Sunday,Female\n" // row 8

	res, err := f.svc.UploadSheet(ctx, actor, f.coachA.ID, "roster.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 4, res.Rejected)
	assert.NotEmpty(t, res.ImportID)
	assert.Equal(t, []string{
		"Row 3: Invalid belt 'Red'",
		fmt.Sprintf("Row 5: Duplicate athlete 'mia lopez' (ID: %d)", existing.UniqueID),
		"Row 6: Error adding Bad Insert: " + core.MapError(errors.New("database is locked")).Message,
		"Row 7: Duplicate athlete 'Ava Chen' (ID: 2)",
	}, res.Errors)

	require.Len(t, res.Athletes, 2)
	assert.Equal(t, int64(2), res.Athletes[0].UniqueID)
	assert.Equal(t, int64(3), res.Athletes[1].UniqueID)

	list, err := f.svc.ListAthletes(ctx, f.coachA.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Contains(t, f.audit.actions(), core.ActionUpload)
}

func TestUploadSheet_Structural(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	actor := f.actor(f.coachA)

	res, err := f.svc.UploadSheet(ctx, actor, f.coachA.ID, "roster.csv", []byte("Name,DOB,Dojo\nMia,2012-03-04,North\n"))
	require.ErrorIs(t, err, core.ErrStructural)
	require.NotNil(t, res)
	assert.Equal(t, []string{"Missing required columns: belt, day, gender"}, res.Errors)
	assert.Zero(t, res.Accepted)

	list, err := f.svc.ListAthletes(ctx, f.coachA.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.UploadSheet(ctx, actor, f.coachA.ID, "roster.csv", nil)
	assert.ErrorIs(t, err, core.ErrNoFile)
}

func TestUploadSheet_XLSXTemplate(t *testing.T) {
	f := newFixture(t, nil)
	var buf bytes.Buffer
	require.NoError(t, f.svc.Template(&buf, core.FormatXLSX))

	res, err := f.svc.UploadSheet(context.Background(), f.actor(f.coachA), f.coachA.ID, "template.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Empty(t, res.Errors)
}

func TestPreviewSheet_FlagsRepeatsWithoutWriting(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	actor := f.actor(f.coachA)

	res, err := f.svc.PreviewSheet(ctx, actor, f.coachA.ID, "roster.csv", []byte(templateCSV+"John Doe,2010-05-15,Main Dojo,White,Saturday,Male\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, []string{"Row 4: Duplicate athlete 'John Doe' (repeats an earlier row)"}, res.Errors)

	list, err := f.svc.ListAthletes(ctx, f.coachA.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateAthlete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	actor := f.actor(f.coachA)

	mia, err := f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Mia"))
	require.NoError(t, err)
	_, err = f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Noah"))
	require.NoError(t, err)

	in := input("Mia")
	in.Belt = "Brown"
	updated, err := f.svc.UpdateAthlete(ctx, actor, mia.ID, in)
	require.NoError(t, err, "updating an athlete does not collide with itself")
	assert.Equal(t, core.BeltBrown, updated.Belt)
	assert.Equal(t, mia.UniqueID, updated.UniqueID)

	_, err = f.svc.UpdateAthlete(ctx, actor, mia.ID, input("noah"))
	assert.ErrorIs(t, err, core.ErrDuplicate)

	_, err = f.svc.UpdateAthlete(ctx, f.actor(f.coachB), mia.ID, input("Mia"))
	assert.ErrorIs(t, err, core.ErrNotFound, "other coaches cannot see the athlete")

	_, err = f.svc.UpdateAthlete(ctx, actor, 999, input("Mia"))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteAthletes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	actor := f.actor(f.coachA)

	var ids []int64
	for i := 0; i < 3; i++ {
		a, err := f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input(fmt.Sprintf("A%d", i)))
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	err := f.svc.DeleteAthlete(ctx, f.actor(f.coachB), ids[0])
	assert.ErrorIs(t, err, core.ErrNotFound)

	n, err := f.svc.DeleteAthletes(ctx, actor, append(ids[:2:2], 999))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := f.svc.ListAthletes(ctx, f.coachA.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ids[2], list[0].ID)
}

func TestSearchAthletes_ScopesCoaches(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateAthlete(ctx, f.actor(f.coachA), f.coachA.ID, input("Mia"))
	require.NoError(t, err)
	_, err = f.svc.CreateAthlete(ctx, f.actor(f.coachB), f.coachB.ID, input("Noah"))
	require.NoError(t, err)

	page, err := f.svc.SearchAthletes(ctx, f.actor(f.coachA), core.AthleteFilter{CoachID: f.coachB.ID})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Mia", page.Athletes[0].Name)

	page, err = f.svc.SearchAthletes(ctx, f.actor(f.admin), core.AthleteFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]*core.Stats
	gets    int
}

func (c *mapCache) GetStats(_ context.Context, key string) (*core.Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	s, ok := c.entries[key]
	return s, ok
}

func (c *mapCache) SetStats(_ context.Context, key string, s *core.Stats, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = s
}

func (c *mapCache) InvalidateStats(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func TestStats_Cache(t *testing.T) {
	cache := &mapCache{entries: make(map[string]*core.Stats)}
	f := newFixture(t, func(o *core.Options) { o.Cache = cache })
	ctx := context.Background()
	actor := f.actor(f.coachA)

	_, err := f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Mia"))
	require.NoError(t, err)

	s, err := f.svc.Stats(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Total)
	assert.Contains(t, cache.entries, fmt.Sprintf("coach:%d", f.coachA.ID))

	_, err = f.svc.CreateAthlete(ctx, actor, f.coachA.ID, input("Noah"))
	require.NoError(t, err)
	assert.Empty(t, cache.entries, "writes invalidate cached statistics")

	s, err = f.svc.Stats(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)

	all, err := f.svc.Stats(ctx, f.actor(f.admin))
	require.NoError(t, err)
	assert.Equal(t, 3, all.CoachCount)
	assert.Contains(t, cache.entries, "all")
}

// racingStore runs during once, right after the first roster read.
type racingStore struct {
	*memory.Store
	fired  atomic.Bool
	during func()
}

func (s *racingStore) ListAthletes(ctx context.Context, coachID int64) ([]core.Athlete, error) {
	list, err := s.Store.ListAthletes(ctx, coachID)
	if s.during != nil && s.fired.CompareAndSwap(false, true) {
		s.during()
	}
	return list, err
}

func TestStats_WriteDuringComputeIsNotCached(t *testing.T) {
	cache := &mapCache{entries: make(map[string]*core.Stats)}
	store := &racingStore{Store: memory.New()}
	svc := core.NewService(store, core.Options{WritesEnabled: true, Cache: cache})
	ctx := context.Background()

	coach, err := svc.SignIn(ctx, "a@dojo.org", "Sensei A", "")
	require.NoError(t, err)
	actor := svc.ActorFor(coach)
	_, err = svc.CreateAthlete(ctx, actor, coach.ID, input("Mia"))
	require.NoError(t, err)

	store.during = func() {
		_, err := svc.CreateAthlete(ctx, actor, coach.ID, input("Noah"))
		require.NoError(t, err)
	}

	s, err := svc.Stats(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Total, "totals come from the read before the write")
	assert.Empty(t, cache.entries, "stale totals are not cached")

	s, err = svc.Stats(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Contains(t, cache.entries, fmt.Sprintf("coach:%d", coach.ID))
}

func TestSignIn(t *testing.T) {
	f := newFixture(t, func(o *core.Options) {
		o.Access.EnforceAllowlist = true
		o.Access.CoachEmails = []string{"a@dojo.org", "b@dojo.org"}
	})
	ctx := context.Background()

	again, err := f.svc.SignIn(ctx, " A@Dojo.org ", "", "")
	require.NoError(t, err)
	assert.Equal(t, f.coachA.ID, again.ID, "sign-in is get-or-create")

	_, err = f.svc.SignIn(ctx, "stranger@else.com", "", "")
	assert.ErrorIs(t, err, core.ErrNotAllowlisted)

	_, err = f.svc.SignIn(ctx, "not-an-email", "", "")
	assert.ErrorIs(t, err, core.ErrInvalidEmail)

	assert.True(t, f.admin.IsAdmin)
	assert.False(t, f.coachA.IsAdmin)
}

func TestCoachAdministration(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.ListCoaches(ctx, f.actor(f.coachA))
	assert.ErrorIs(t, err, core.ErrForbidden)

	promoted, err := f.svc.SetCoachAdmin(ctx, f.actor(f.admin), "B@dojo.org", true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	stored, err := f.svc.CoachByEmail(ctx, "b@dojo.org")
	require.NoError(t, err)
	assert.True(t, f.svc.ActorFor(stored).Admin)

	coaches, err := f.svc.ListCoaches(ctx, f.actor(f.admin))
	require.NoError(t, err)
	assert.Len(t, coaches, 3)
}

func TestExport_AdminAddsCoachColumn(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateAthlete(ctx, f.actor(f.coachA), f.coachA.ID, input("Mia"))
	require.NoError(t, err)

	var coachOut, adminOut bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, &coachOut, f.actor(f.coachA), core.FormatCSV))
	require.NoError(t, f.svc.Export(ctx, &adminOut, f.actor(f.admin), core.FormatCSV))

	assert.False(t, strings.Contains(coachOut.String(), "Coach"))
	assert.Contains(t, adminOut.String(), ",Sensei A")
}

func TestRegistration_Countdown(t *testing.T) {
	closes := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, func(o *core.Options) {
		o.ShowTimer = true
		o.ClosesAt = &closes
		o.Now = func() time.Time { return closes.Add(-26 * time.Hour) }
	})

	status := f.svc.Registration()
	assert.True(t, status.WritesEnabled)
	require.NotNil(t, status.Countdown)
	assert.Equal(t, 1, status.Countdown.Days)
	assert.Equal(t, 2, status.Countdown.Hours)
}
