package repositories

import (
	"context"
	"database/sql"
	"journey-times/internal/platform/db"
	"journey-times/internal/platform/obs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, InitSchema(context.Background(), conn, db.DriverSQLite))
	return conn
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", rebind(db.DriverPostgres, q))
	assert.Equal(t, q, rebind(db.DriverSQLite, q))
}

func TestInitSchema_Idempotent(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, InitSchema(context.Background(), conn, db.DriverSQLite))
}

func TestInitSchema_NilDB(t *testing.T) {
	assert.Error(t, InitSchema(context.Background(), nil, db.DriverSQLite))
}

func TestSQLResultsStore_AppendAndLoad(t *testing.T) {
	conn := openTestDB(t)
	s := NewSQLResultsStore(conn, db.DriverSQLite, nil)
	ctx := obs.WithRunID(context.Background(), "run-1")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, "GB", record(i)))
	}
	require.NoError(t, s.Append(ctx, "FR", record(9)))

	got, err := s.LoadAll(ctx, "GB")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range got {
		assert.Equal(t, record(i), got[i])
	}

	var runID string
	require.NoError(t, conn.QueryRow(`SELECT run_id FROM results WHERE country_code = 'FR'`).Scan(&runID))
	assert.Equal(t, "run-1", runID)

	codes, err := s.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "GB"}, codes)
}

func TestSQLResultsStore_LoadAllUnknownCountry(t *testing.T) {
	s := NewSQLResultsStore(openTestDB(t), db.DriverSQLite, nil)
	got, err := s.LoadAll(context.Background(), "ZZ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportResultsFiles(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	files := NewFileResultsStore(t.TempDir(), nil)

	for i := 0; i < 4; i++ {
		require.NoError(t, files.Append(ctx, "NL", record(i)))
	}
	require.NoError(t, files.Append(ctx, "BE", record(0)))

	n, err := ImportResultsFiles(ctx, conn, db.DriverSQLite, files)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// Repeating the import replaces rather than duplicates.
	n, err = ImportResultsFiles(ctx, conn, db.DriverSQLite, files)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	s := NewSQLResultsStore(conn, db.DriverSQLite, nil)
	nl, err := s.LoadAll(ctx, "NL")
	require.NoError(t, err)
	require.Len(t, nl, 4)
	assert.Equal(t, record(3), nl[3])
}

func TestFanOutResultsStore(t *testing.T) {
	ctx := context.Background()
	files := NewFileResultsStore(t.TempDir(), nil)
	mirror := NewSQLResultsStore(openTestDB(t), db.DriverSQLite, nil)
	s := NewFanOutResultsStore(files, mirror)

	require.NoError(t, s.Append(ctx, "CH", record(0)))
	require.NoError(t, s.Append(ctx, "CH", record(1)))

	fromFile, err := s.LoadAll(ctx, "CH")
	require.NoError(t, err)
	fromDB, err := mirror.LoadAll(ctx, "CH")
	require.NoError(t, err)
	assert.Equal(t, fromFile, fromDB)

	codes, err := s.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CH"}, codes)
}

func TestFanOutResultsStore_PrimaryFailureSkipsMirror(t *testing.T) {
	ctx := context.Background()
	mirror := NewSQLResultsStore(openTestDB(t), db.DriverSQLite, nil)
	s := NewFanOutResultsStore(NewFileResultsStore(t.TempDir(), nil), mirror)

	bad := record(0)
	bad.Date = ""
	require.Error(t, s.Append(ctx, "CH", bad))

	got, err := mirror.LoadAll(ctx, "CH")
	require.NoError(t, err)
	assert.Empty(t, got)
}
