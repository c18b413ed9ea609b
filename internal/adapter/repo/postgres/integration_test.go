//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "app"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(90 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })
	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return "postgres://postgres:postgres@" + host + ":" + port.Port() + "/app?sslmode=disable"
}

func TestMatchRepo_RoundTrip_Postgres(t *testing.T) {
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.Eventually(t, func() bool { return pool.Ping(ctx) == nil }, 30*time.Second, time.Second)

	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	// idempotent
	require.NoError(t, postgres.EnsureSchema(ctx, pool))

	repo := postgres.NewMatchRepo(pool)
	in := sampleMatch()
	in.MissingKeywords = []string{"nursing", "shifts"}
	id, err := repo.Create(ctx, in)
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, in.Result.OverallScore, got.Result.OverallScore)
	assert.Equal(t, in.Result.MatchedSkills, got.Result.MatchedSkills)
	assert.Equal(t, []string{}, got.Result.MissingSkills)
	assert.Equal(t, in.MissingKeywords, got.MissingKeywords)
	assert.Equal(t, domain.LanguageEnglish, got.Language)

	_, err = repo.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	old := sampleMatch()
	old.CreatedAt = time.Now().UTC().AddDate(0, 0, -100)
	_, err = repo.Create(ctx, old)
	require.NoError(t, err)

	n, err := postgres.NewCleanupService(pool, 90).CleanupOldData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.Get(ctx, id)
	require.NoError(t, err)
}
