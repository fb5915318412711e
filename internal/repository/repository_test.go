package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
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

	// a second pooled connection would get its own empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Item{}, &models.Buy{}, &models.Deposit{},
	))
	return db
}

func createCategory(t *testing.T, repo *CategoryRepository, name string, parentID *int64) *models.Category {
	t.Helper()
	cat, err := repo.Create(name, parentID, false, nil, nil)
	require.NoError(t, err)
	return cat
}

func createProduct(t *testing.T, repo *CategoryRepository, name string, parentID *int64, price float64) *models.Category {
	t.Helper()
	description := name + " description"
	cat, err := repo.Create(name, parentID, true, &price, &description)
	require.NoError(t, err)
	return cat
}
