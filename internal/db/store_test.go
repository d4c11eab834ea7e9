package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		dbPath      string
		expectedErr string
	}{
		{"empty_path", "", "empty database path"},
		{"whitespace_path", "   ", "empty database path"},
		{"tabs_path", "\t\t", "empty database path"},
		{"traversal", "../outside/cache.db", "directory traversal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.dbPath)
			assert.Nil(t, store)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestOpen_Success(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	assert.NotNil(t, store.db)
	assert.NoError(t, store.Close())
}

func TestOpen_DirectoryCreation(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "deep", "test.db")

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, filepath.Dir(dbPath))
}

func TestOpen_FilePermissions(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestOpen_ExistingFile(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "existing.db")

	store1, err := Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	store2, err := Open(ctx, dbPath)
	require.NoError(t, err)
	assert.NoError(t, store2.Close())
}

func TestClose_Nil(t *testing.T) {
	var store *Store
	assert.NoError(t, store.Close())
	assert.NoError(t, (&Store{}).Close())
}

func TestDB_Getter(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &sql.DB{}, store.DB())
}

func TestMigration_LatestVersion(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer store.Close()

	var tableName string
	err = store.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='kv_cache'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "kv_cache", tableName)

	ver, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].version, ver)
}

func TestMigration_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.migrate(ctx))
}

func TestVersion_NilStore(t *testing.T) {
	var store *Store
	_, err := store.Version(context.Background())
	assert.Error(t, err)
}

func TestPragmas_Configuration(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "pragmas.db"))
	require.NoError(t, err)
	defer store.Close()

	var journalMode string
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)
}

func TestDatabase_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "concurrent.db")

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()

	store2, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer store2.Close()

	v1, err := store.Version(ctx)
	require.NoError(t, err)
	v2, err := store2.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}
