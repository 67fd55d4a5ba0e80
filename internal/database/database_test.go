package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "foodgram.db")}
	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.RunMigrations(db, ""))
	require.NoError(t, database.HealthCheck(context.Background(), db))

	for _, table := range []string{"users", "ingredients", "recipes", "recipe_ingredients"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := database.Open(context.Background(), &config.Config{DBDriver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "0001_a_rollback.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o755))

	files, err := database.MigrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql"}, files)

	_, err = database.MigrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestPostgresMigrations(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)

	var applied int64
	require.NoError(t, db.Table("schema_migrations").Count(&applied).Error)
	files, err := database.MigrationFiles(testhelpers.MigrationsDir())
	require.NoError(t, err)
	assert.Equal(t, int64(len(files)), applied)

	// Applying again is a no-op.
	require.NoError(t, database.RunMigrations(db, testhelpers.MigrationsDir()))

	user := testhelpers.CreateUser(t, db, "postgres_user")
	var loaded models.User
	require.NoError(t, db.First(&loaded, "id = ?", user.ID).Error)
	assert.Equal(t, "postgres_user", loaded.Username)
}

func TestNewRedisClientUnconfigured(t *testing.T) {
	client, err := database.NewRedisClient(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
