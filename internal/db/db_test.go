package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/db"
)

//nolint:paralleltest // package-level handle
func TestRunMigrations(t *testing.T) {
	_, err := db.OpenAt(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	status, err := db.GetMigrationStatus()
	require.NoError(t, err)
	require.True(t, status.Pending)
	require.EqualValues(t, 1, status.LatestVersion)

	require.NoError(t, db.RunMigrations())
	require.NoError(t, db.RunMigrations())

	status, err = db.GetMigrationStatus()
	require.NoError(t, err)
	require.False(t, status.Pending)
	require.False(t, status.Dirty)
	require.EqualValues(t, 1, status.CurrentVersion)

	var n int
	require.NoError(t, db.Get().QueryRow("SELECT COUNT(*) FROM session").Scan(&n))
	require.Zero(t, n)
}

//nolint:paralleltest // package-level handle
func TestRunMigrations_NotOpen(t *testing.T) {
	require.ErrorIs(t, db.RunMigrations(), db.ErrNotOpen)
}
