package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

func openTestDB(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: filepath.Join(t.TempDir(), "test.db"),
		Catalog:     config.DefaultCatalog(),
	}
}

func TestInit_SeedsEveryCombination(t *testing.T) {
	cfg := openTestDB(t)

	db, err := Init(cfg, zap.NewNop())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.StockItem{}).Count(&count).Error)
	assert.Equal(t, int64(2*5*5), count)

	var nonZero int64
	require.NoError(t, db.Model(&models.StockItem{}).Where("qty <> 0").Count(&nonZero).Error)
	assert.Zero(t, nonZero)
}

func TestSeed_Idempotent(t *testing.T) {
	cfg := openTestDB(t)

	db, err := Init(cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.StockItem{}).
		Where("branch = ? AND diameter = ? AND length = ?", "Dentsun Menemen", 3.5, 7).
		Update("qty", 9).Error)

	require.NoError(t, Seed(db, cfg.Catalog, zap.NewNop()))
	require.NoError(t, Seed(db, cfg.Catalog, zap.NewNop()))

	var count int64
	require.NoError(t, db.Model(&models.StockItem{}).Count(&count).Error)
	assert.Equal(t, int64(50), count)

	var item models.StockItem
	require.NoError(t, db.Where("branch = ? AND diameter = ? AND length = ?", "Dentsun Menemen", 3.5, 7).First(&item).Error)
	assert.Equal(t, 9, item.Qty)
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	cfg := openTestDB(t)

	_, err := Init(cfg, zap.NewNop())
	require.NoError(t, err)

	db, err := Init(cfg, zap.NewNop())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.StockItem{}).Count(&count).Error)
	assert.Equal(t, int64(50), count)
}
