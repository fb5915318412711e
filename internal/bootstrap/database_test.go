package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nalyk/shopbot/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestEnsureIsActiveColumnFreshInstall(t *testing.T) {
	db := newTestDB(t)

	// no categories table yet, nothing to migrate
	require.NoError(t, EnsureIsActiveColumn(db, ""))
	assert.False(t, db.Migrator().HasTable(&models.Category{}))
}

func TestEnsureIsActiveColumnLegacyTable(t *testing.T) {
	db := newTestDB(t)

	// a pre-archiving schema: categories without is_active
	require.NoError(t, db.Exec(`CREATE TABLE categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER,
		name TEXT NOT NULL,
		is_product BOOLEAN NOT NULL DEFAULT 0,
		price REAL,
		description TEXT,
		image_file_id TEXT
	)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO categories (name) VALUES ('Legacy')`).Error)

	require.NoError(t, EnsureIsActiveColumn(db, ""))
	require.True(t, db.Migrator().HasColumn(&models.Category{}, "is_active"))

	// existing rows default to active
	var cat models.Category
	require.NoError(t, db.First(&cat).Error)
	assert.True(t, cat.IsActive)
	assert.Equal(t, "Legacy", cat.Name)
}

func TestEnsureIsActiveColumnSnapshotsDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER,
		name TEXT NOT NULL,
		is_product BOOLEAN NOT NULL DEFAULT 0,
		price REAL,
		description TEXT,
		image_file_id TEXT
	)`).Error)

	require.NoError(t, EnsureIsActiveColumn(db, path))

	_, err = os.Stat(path + ".is_active_backup")
	assert.NoError(t, err, "a snapshot of the data file is kept")
	assert.True(t, db.Migrator().HasColumn(&models.Category{}, "is_active"))
}

func TestEnsureIsActiveColumnIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.Category{}))

	require.NoError(t, EnsureIsActiveColumn(db, ""))
	require.NoError(t, EnsureIsActiveColumn(db, ""))
}

func TestMigrateAndSeedCreatesSchema(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, MigrateAndSeed(db, ""))
	for _, model := range allModels() {
		assert.True(t, db.Migrator().HasTable(model))
	}
}
