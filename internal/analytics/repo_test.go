//go:build integration_test || all_tests

package analytics

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pinkth3floyd/cinehub-sub001/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) (*Repo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "cinehub_movies",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	return NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func TestRepo_AddVisit_Counts(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	countBefore, err := repo.CountAll(ctx)
	require.NoError(t, err)

	now := time.Now()
	v1 := &Visit{
		Page:        "/movies/blade-runner",
		UserAgent:   "test-agent",
		CountryCode: "RS",
		Timestamp:   now,
	}
	require.NoError(t, repo.AddVisit(ctx, v1))
	v2 := &Visit{
		Page:        "/",
		CountryCode: "DE",
		Timestamp:   now,
	}
	require.NoError(t, repo.AddVisit(ctx, v2))

	assert.NotEqual(t, v1.ID, v2.ID)

	// page and timestamp are mandatory
	require.Error(t, repo.AddVisit(ctx, &Visit{Timestamp: now}))
	require.Error(t, repo.AddVisit(ctx, &Visit{Page: "/"}))

	countAfter, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, countBefore+2, countAfter)

	sinceCount, err := repo.CountSince(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sinceCount, 2)

	countryVisits, err := repo.CountPerCountry(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, countryVisits)
}
