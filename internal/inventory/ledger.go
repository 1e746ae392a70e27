package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/audit"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

// Ledger şube/ölçü bazında eldeki stoku tutar. Her adet değişimi aynı transaction
// içinde stok log'a yazılır.
type Ledger struct {
	db      *gorm.DB
	catalog config.Catalog
	audit   *audit.Log
	log     *zap.Logger
}

func NewLedger(db *gorm.DB, catalog config.Catalog, auditLog *audit.Log, log *zap.Logger) *Ledger {
	return &Ledger{db: db, catalog: catalog, audit: auditLog, log: log}
}

// WithTx ledger'ı verilen transaction'a bağlar. Hasta işlemleri tüm ayarlamaları
// tek transaction'da yapmak için bunu kullanır.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx, catalog: l.catalog, audit: l.audit.WithTx(tx), log: l.log}
}

func (l *Ledger) Catalog() config.Catalog { return l.catalog }

// Adjust stoku delta kadar değiştirir ve yeni adedi döner. Sonuç negatif olacaksa
// hiçbir şey yazılmaz, *StockError döner.
func (l *Ledger) Adjust(ctx context.Context, branch string, diameter, length float64, delta int, reason models.StockAction) (int, error) {
	if err := l.checkKey(branch, diameter, length); err != nil {
		return 0, err
	}
	if err := checkQuantity(delta); err != nil {
		return 0, err
	}

	var qty int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := lockItem(ctx, tx, branch, diameter, length)
		if err != nil {
			return err
		}
		qty, err = l.WithTx(tx).write(ctx, item, delta, reason)
		return err
	})
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// SetAbsolute stoku target değerine getirir. Değişim yoksa log yazılmaz.
func (l *Ledger) SetAbsolute(ctx context.Context, branch string, diameter, length float64, target int, reason models.StockAction) (int, error) {
	if err := l.checkKey(branch, diameter, length); err != nil {
		return 0, err
	}
	if err := checkQuantity(target); err != nil {
		return 0, err
	}
	if reason == "" {
		reason = models.ActionManualEdit
	}

	var qty int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := lockItem(ctx, tx, branch, diameter, length)
		if err != nil {
			return err
		}
		qty, err = l.WithTx(tx).write(ctx, item, target-item.Qty, reason)
		return err
	})
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// Cell stok tablosundaki tek bir hücrenin hedef değeri.
type Cell struct {
	Diameter float64
	Length   float64
	Qty      int
}

// SetGrid stok tablosunun tamamını tek transaction'da kaydeder ve değişen hücre
// sayısını döner. Bir hücre hatalıysa hiçbiri kaydedilmez.
func (l *Ledger) SetGrid(ctx context.Context, branch string, cells []Cell) (int, error) {
	if !l.catalog.HasBranch(branch) {
		return 0, fmt.Errorf("%w: %s", config.ErrUnknownBranch, branch)
	}

	changed := 0
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txl := l.WithTx(tx)
		for _, cell := range cells {
			if err := txl.checkKey(branch, cell.Diameter, cell.Length); err != nil {
				return err
			}
			if err := checkQuantity(cell.Qty); err != nil {
				return err
			}
			item, err := lockItem(ctx, tx, branch, cell.Diameter, cell.Length)
			if err != nil {
				return err
			}
			if item.Qty != cell.Qty {
				changed++
			}
			if _, err := txl.write(ctx, item, cell.Qty-item.Qty, models.ActionManualEdit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// GetAll şubenin stok satırlarını katalog sırasıyla (çap, sonra uzunluk) döner.
// Veritabanında olmayan bir satır 0 adet kabul edilir.
func (l *Ledger) GetAll(ctx context.Context, branch string) ([]models.StockItem, error) {
	if !l.catalog.HasBranch(branch) {
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBranch, branch)
	}

	var rows []models.StockItem
	if err := l.db.WithContext(ctx).Where("branch = ?", branch).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("stok listelenemedi: %w", err)
	}

	type key struct{ d, l float64 }
	byKey := make(map[key]int, len(rows))
	for _, r := range rows {
		byKey[key{r.Diameter, r.Length}] = r.Qty
	}

	out := make([]models.StockItem, 0, len(l.catalog.Diameters())*len(l.catalog.Lengths()))
	for _, d := range l.catalog.Diameters() {
		for _, ln := range l.catalog.Lengths() {
			out = append(out, models.StockItem{Branch: branch, Diameter: d, Length: ln, Qty: byKey[key{d, ln}]})
		}
	}
	return out, nil
}

func (l *Ledger) checkKey(branch string, diameter, length float64) error {
	if !l.catalog.HasBranch(branch) {
		return fmt.Errorf("%w: %s", config.ErrUnknownBranch, branch)
	}
	if !l.catalog.HasSize(diameter, length) {
		return fmt.Errorf("%w: %sx%s", ErrUnknownSize, config.FormatSize(diameter), config.FormatSize(length))
	}
	return nil
}

func lockItem(ctx context.Context, tx *gorm.DB, branch string, diameter, length float64) (models.StockItem, error) {
	var item models.StockItem
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch = ? AND diameter = ? AND length = ?", branch, diameter, length).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, fmt.Errorf("%w: %s %sx%s için stok satırı yok", ErrUnknownSize,
			branch, config.FormatSize(diameter), config.FormatSize(length))
	}
	if err != nil {
		return item, fmt.Errorf("stok okunamadı: %w", err)
	}
	return item, nil
}

// write kilitli satıra delta uygular ve log'a ekler. l bir transaction'a bağlı olmalıdır.
func (l *Ledger) write(ctx context.Context, item models.StockItem, delta int, reason models.StockAction) (int, error) {
	if delta == 0 {
		return item.Qty, nil
	}

	// item.Qty ve delta sınırlı olduğu için toplam taşmaz
	newQty := item.Qty + delta
	if newQty > MaxQuantity {
		return 0, fmt.Errorf("%w: %d + %d (en fazla %d)", ErrQuantityOutOfRange, item.Qty, delta, MaxQuantity)
	}
	if newQty < 0 {
		l.log.Warn("Stok negatife düşecekti, işlem reddedildi",
			zap.String("branch", item.Branch),
			zap.Float64("diameter", item.Diameter),
			zap.Float64("length", item.Length),
			zap.Int("current", item.Qty),
			zap.Int("delta", delta),
			zap.String("reason", string(reason)))
		return 0, &StockError{Branch: item.Branch, Diameter: item.Diameter, Length: item.Length, Current: item.Qty, Delta: delta}
	}

	if err := l.db.WithContext(ctx).Model(&models.StockItem{}).
		Where("branch = ? AND diameter = ? AND length = ?", item.Branch, item.Diameter, item.Length).
		Update("qty", newQty).Error; err != nil {
		return 0, fmt.Errorf("stok güncellenemedi: %w", err)
	}

	if err := l.audit.Append(ctx, &models.StockLog{
		Branch:   item.Branch,
		Diameter: item.Diameter,
		Length:   item.Length,
		Qty:      delta,
		Action:   reason,
	}); err != nil {
		return 0, err
	}

	l.log.Debug("Stok güncellendi",
		zap.String("branch", item.Branch),
		zap.Float64("diameter", item.Diameter),
		zap.Float64("length", item.Length),
		zap.Int("qty", newQty),
		zap.Int("delta", delta),
		zap.String("reason", string(reason)))

	return newQty, nil
}
