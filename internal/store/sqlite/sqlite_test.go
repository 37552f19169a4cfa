package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/store/sqlite"
	"github.com/JonMunkholm/entrydesk/internal/store/storetest"
)

func openTestStore(t *testing.T) core.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, openTestStore)
}

func TestOpen_FileReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entrydesk.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	_, err = s.CreateCoach(ctx, core.Coach{Email: "a@dojo.org"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	c, err := s.GetCoachByEmail(ctx, "a@dojo.org")
	require.NoError(t, err)
	assert.Equal(t, "a@dojo.org", c.Email)
}

func TestConcurrentRegistrations(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "entrydesk.db"))
	require.NoError(t, err)
	defer s.Close()

	svc := core.NewService(s, core.Options{WritesEnabled: true})
	coach, err := svc.SignIn(ctx, "coach@dojo.org", "", "")
	require.NoError(t, err)
	actor := svc.ActorFor(coach)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateAthlete(ctx, actor, coach.ID, core.AthleteInput{
				Name: fmt.Sprintf("Runner %d", i), DOB: "2012-01-01", Dojo: "North", Belt: "White", Day: "Sat", Gender: "M",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := s.ListAthletes(ctx, coach.ID)
	require.NoError(t, err)
	require.Len(t, list, n)
	for i, a := range list {
		assert.Equal(t, int64(i+1), a.UniqueID)
	}
}
