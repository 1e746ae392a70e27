package testutil

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/database"
)

// NewDB creates a migrated and seeded sqlite database in the test's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if err := database.Seed(db, config.DefaultCatalog(), zap.NewNop()); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
