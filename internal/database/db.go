package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

// Open yapılandırmadaki sürücüye göre veritabanına bağlanır.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch cfg.DBDriver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), gcfg)
		if err != nil {
			return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
		}
		return db, nil
	default:
		return OpenSQLite(cfg.DatabaseDSN, gcfg)
	}
}

// OpenSQLite tek dosyalık sqlite veritabanını açar.
// SQLite aynı anda tek yazıcıyı desteklediği için havuz tek bağlantıyla sınırlanır.
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("veritabanı açılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("bağlantı havuzu alınamadı: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return db, nil
}

// Migrate tabloları oluşturur/günceller.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.StockItem{},
		&models.Patient{},
		&models.Implant{},
		&models.StockLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}
	return nil
}

// Seed her şube x çap x uzunluk kombinasyonu için eksik stok satırlarını qty=0 ile ekler.
// Var olan satırlara dokunmaz, tekrar çağrılabilir.
func Seed(db *gorm.DB, catalog config.Catalog, log *zap.Logger) error {
	rows := make([]models.StockItem, 0)
	for _, b := range catalog.Branches() {
		for _, d := range catalog.Diameters() {
			for _, l := range catalog.Lengths() {
				rows = append(rows, models.StockItem{Branch: b, Diameter: d, Length: l, Qty: 0})
			}
		}
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return fmt.Errorf("stok satırları oluşturulamadı: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Info("Eksik stok satırları oluşturuldu", zap.Int64("rows", res.RowsAffected))
	}
	return nil
}

// Init bağlanır, migrate eder ve stok satırlarını hazırlar.
func Init(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := Seed(db, cfg.Catalog, log); err != nil {
		return nil, err
	}
	log.Info("Veritabanı bağlantısı başarılı. Migration tamamlandı.", zap.String("driver", cfg.DBDriver))
	return db, nil
}
