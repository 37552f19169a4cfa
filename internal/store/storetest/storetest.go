// Package storetest checks a core.Store implementation against the
// behavior the service relies on. Every store package runs it.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

// Factory returns an empty store. It should register its own cleanup.
type Factory func(t *testing.T) core.Store

// Run executes the store contract tests.
func Run(t *testing.T, newStore Factory) {
	t.Run("Coaches", func(t *testing.T) { testCoaches(t, newStore(t)) })
	t.Run("InsertAndList", func(t *testing.T) { testInsertAndList(t, newStore(t)) })
	t.Run("UniqueIDConflict", func(t *testing.T) { testUniqueIDConflict(t, newStore(t)) })
	t.Run("Rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("UpdateDelete", func(t *testing.T) { testUpdateDelete(t, newStore(t)) })
	t.Run("Service", func(t *testing.T) { testService(t, newStore(t)) })
}

var created = time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC)

func seedCoach(t *testing.T, s core.Store, email string) core.Coach {
	t.Helper()
	c, err := s.CreateCoach(context.Background(), core.Coach{Email: email, Name: email, CreatedAt: created})
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	return c
}

func record(name string, dob time.Time) core.AthleteRecord {
	return core.AthleteRecord{Name: name, DOB: dob, Dojo: "North Dojo", Belt: core.BeltBlue, Day: core.DaySunday, Gender: core.GenderFemale}
}

func insert(t *testing.T, s core.Store, coachID, uniqueID int64, rec core.AthleteRecord) core.Athlete {
	t.Helper()
	var a core.Athlete
	err := s.InTx(context.Background(), func(tx core.Tx) error {
		var err error
		a, err = tx.InsertAthlete(context.Background(), core.Athlete{
			UniqueID: uniqueID, CoachID: coachID, AthleteRecord: rec, CreatedAt: created, UpdatedAt: created,
		})
		return err
	})
	require.NoError(t, err)
	return a
}

func testCoaches(t *testing.T, s core.Store) {
	ctx := context.Background()
	c := seedCoach(t, s, "a@dojo.org")

	got, err := s.GetCoachByEmail(ctx, "a@dojo.org")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.False(t, got.IsAdmin)

	_, err = s.CreateCoach(ctx, core.Coach{Email: "a@dojo.org", CreatedAt: created})
	assert.ErrorIs(t, err, core.ErrCoachExists)

	_, err = s.GetCoach(ctx, c.ID+100)
	assert.ErrorIs(t, err, core.ErrCoachNotFound)
	_, err = s.GetCoachByEmail(ctx, "missing@dojo.org")
	assert.ErrorIs(t, err, core.ErrCoachNotFound)

	require.NoError(t, s.SetCoachAdmin(ctx, c.ID, true))
	got, err = s.GetCoach(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.ErrorIs(t, s.SetCoachAdmin(ctx, c.ID+100, true), core.ErrCoachNotFound)

	seedCoach(t, s, "b@dojo.org")
	list, err := s.ListCoaches(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@dojo.org", list[0].Email)
}

func testInsertAndList(t *testing.T, s core.Store) {
	ctx := context.Background()
	a := seedCoach(t, s, "a@dojo.org")
	b := seedCoach(t, s, "b@dojo.org")
	dob := time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC)

	insert(t, s, a.ID, 2, record("Second", dob))
	first := insert(t, s, a.ID, 1, record("First", dob))
	insert(t, s, b.ID, 3, record("Other", dob.AddDate(0, 0, 1)))

	got, err := s.GetAthlete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
	assert.True(t, got.DOB.Equal(dob), "DOB = %v", got.DOB)
	assert.Equal(t, core.BeltBlue, got.Belt)
	assert.True(t, got.CreatedAt.Equal(created), "CreatedAt = %v", got.CreatedAt)

	mine, err := s.ListAthletes(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, []int64{1, 2}, []int64{mine[0].UniqueID, mine[1].UniqueID})

	all, err := s.ListAthletes(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	err = s.InTx(ctx, func(tx core.Tx) error {
		maxID, err := tx.MaxUniqueID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), maxID)

		sameDay, err := tx.AthletesByDOB(ctx, dob, 0)
		require.NoError(t, err)
		assert.Len(t, sameDay, 2)

		scoped, err := tx.AthletesByDOB(ctx, dob, b.ID)
		require.NoError(t, err)
		assert.Empty(t, scoped)
		return nil
	})
	require.NoError(t, err)
}

func testUniqueIDConflict(t *testing.T, s core.Store) {
	ctx := context.Background()
	c := seedCoach(t, s, "a@dojo.org")
	dob := time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC)
	insert(t, s, c.ID, 1, record("First", dob))

	err := s.InTx(ctx, func(tx core.Tx) error {
		_, err := tx.InsertAthlete(ctx, core.Athlete{UniqueID: 1, CoachID: c.ID, AthleteRecord: record("Clash", dob), CreatedAt: created, UpdatedAt: created})
		return err
	})
	assert.ErrorIs(t, err, core.ErrUniqueIDConflict)
}

func testRollback(t *testing.T, s core.Store) {
	ctx := context.Background()
	c := seedCoach(t, s, "a@dojo.org")
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx core.Tx) error {
		_, err := tx.InsertAthlete(ctx, core.Athlete{UniqueID: 1, CoachID: c.ID, AthleteRecord: record("Gone", created), CreatedAt: created, UpdatedAt: created})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := s.ListAthletes(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testUpdateDelete(t *testing.T, s core.Store) {
	ctx := context.Background()
	c := seedCoach(t, s, "a@dojo.org")
	a := insert(t, s, c.ID, 1, record("Before", created))

	a.Name = "After"
	a.Belt = core.BeltBlack
	err := s.InTx(ctx, func(tx core.Tx) error { return tx.UpdateAthlete(ctx, a) })
	require.NoError(t, err)

	got, err := s.GetAthlete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, core.BeltBlack, got.Belt)
	assert.Equal(t, int64(1), got.UniqueID)

	require.NoError(t, s.DeleteAthlete(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteAthlete(ctx, a.ID), core.ErrNotFound)
	_, err = s.GetAthlete(ctx, a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = s.InTx(ctx, func(tx core.Tx) error { return tx.UpdateAthlete(ctx, a) })
	assert.ErrorIs(t, err, core.ErrNotFound)
}

// testService drives the pipeline end to end on the store.
func testService(t *testing.T, s core.Store) {
	ctx := context.Background()
	svc := core.NewService(s, core.Options{WritesEnabled: true})

	coach, err := svc.SignIn(ctx, "coach@dojo.org", "Coach", "")
	require.NoError(t, err)
	actor := svc.ActorFor(coach)

	csv := "Name,DOB,Dojo,Belt,Day,Gender\n" +
		"Ava Chen,2013-01-02,North,White,Sat,F\n" +
		"Leo Park,02/14/2012,North,Yellow,Sun,M\n" +
		"ava  chen,2013-01-02,north,Blue,Sun,Girl\n"

	res, err := svc.UploadSheet(ctx, actor, coach.ID, "roster.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, []string{"Row 4: Duplicate athlete 'ava  chen' (ID: 1)"}, res.Errors)

	next, err := svc.CreateAthlete(ctx, actor, coach.ID, core.AthleteInput{
		Name: "Mia", DOB: "2011-05-06", Dojo: "North", Belt: "Green", Day: "Saturday", Gender: "Female",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.UniqueID)
}
