package bootstrap

import (
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/nalyk/shopbot/internal/models"
)

// MigrateAndSeed ensures the schema matches the models. The is_active
// column on categories predates AutoMigrate here, so older databases get
// it through the guarded migration below before AutoMigrate runs.
func MigrateAndSeed(db *gorm.DB, sqlitePath string) error {
	if err := EnsureIsActiveColumn(db, sqlitePath); err != nil {
		return fmt.Errorf("is_active migration failed: %w", err)
	}
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Item{},
		&models.Buy{},
		&models.Deposit{},
	}
}

// EnsureIsActiveColumn adds the is_active column to categories on databases
// created before archiving existed. It is a no-op when the table is absent
// (fresh install, AutoMigrate will create it) or the column already exists.
// For sqlite backends the data file is snapshotted first; if the column
// cannot be verified after the ALTER the transaction is rolled back and the
// snapshot is left in place for manual recovery.
func EnsureIsActiveColumn(db *gorm.DB, sqlitePath string) error {
	migrator := db.Migrator()
	if !migrator.HasTable(&models.Category{}) {
		return nil
	}
	if migrator.HasColumn(&models.Category{}, "is_active") {
		return nil
	}

	if sqlitePath != "" {
		if err := snapshotFile(sqlitePath, sqlitePath+".is_active_backup"); err != nil {
			return fmt.Errorf("snapshot before migration: %w", err)
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("ALTER TABLE categories ADD COLUMN is_active BOOLEAN NOT NULL DEFAULT 1").Error; err != nil {
			return fmt.Errorf("alter table: %w", err)
		}
		if !tx.Migrator().HasColumn(&models.Category{}, "is_active") {
			return fmt.Errorf("is_active column not present after alter")
		}
		return nil
	})
}

func snapshotFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			// no data file yet, nothing to protect
			return nil
		}
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
