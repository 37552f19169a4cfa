//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/JonMunkholm/entrydesk/internal/config"
	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/store/postgres"
	"github.com/JonMunkholm/entrydesk/internal/store/storetest"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("entrydesk"),
		tcpostgres.WithUsername("entrydesk"),
		tcpostgres.WithPassword("entrydesk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestStoreContract(t *testing.T) {
	dsn := startPostgres(t)
	cfg := config.DatabaseConfig{URL: dsn, MaxConns: 5, MinConns: 1, MaxConnLifetime: time.Hour, MaxConnIdleTime: time.Minute}

	storetest.Run(t, func(t *testing.T) core.Store {
		ctx := context.Background()
		s, err := postgres.Open(ctx, cfg)
		require.NoError(t, err)
		_, err = s.Pool().Exec(ctx, `TRUNCATE athletes, coaches RESTART IDENTITY`)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
