package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/db"
	"github.com/emilianohg/sitecrew/internal/models"
	"github.com/emilianohg/sitecrew/internal/repository"
)

func newRepo(t *testing.T) *repository.SessionRepo {
	t.Helper()

	conn, err := db.OpenAt(filepath.Join(t.TempDir(), "session.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations())

	return repository.NewSessionRepo(conn)
}

//nolint:paralleltest // package-level db handle
func TestSessionRepo_SaveLoadClear(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	first := models.StoredSession{
		Identity: models.Identity{ID: 7, Name: "Ana", Email: "ana@example.com", Role: models.RoleClient},
		Token:    "tok-1",
		Cookie:   "session=abc",
	}
	require.NoError(t, repo.Save(ctx, first))

	second := first
	second.Identity.Role = models.RoleAdmin
	second.Token = "tok-2"
	require.NoError(t, repo.Save(ctx, second))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, &second, got)

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
}
