package database

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_later.sql": {Data: []byte("SELECT 1")},
		"migrations/002_next.sql":  {Data: []byte("SELECT 1")},
		"migrations/001_init.sql":  {Data: []byte("SELECT 1")},
		"migrations/sub/x.sql":     {Data: []byte("SELECT 1")},
	}

	names, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_next.sql", "010_later.sql"}, names)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := migrationFiles(migrationsFS)
	require.NoError(t, err)
	assert.Contains(t, names, "001_init.sql")
}

func TestMigrateIsIdempotent(t *testing.T) {
	uri := os.Getenv("TEST_DATABASE_URI")
	if uri == "" {
		t.Skip("TEST_DATABASE_URI not set")
	}
	ctx := context.Background()

	db, err := New(ctx, uri, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	var n int
	require.NoError(t, db.Pool.QueryRow(ctx,
		"SELECT count(*) FROM schema_migrations WHERE version = '001_init.sql'",
	).Scan(&n))
	assert.Equal(t, 1, n)
}
