package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/inventory"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

var (
	ErrNotFound  = errors.New("hasta bulunamadı")
	ErrEmptyName = errors.New("hasta adı boş olamaz")
)

// Line hastaya kullanılan tek bir implant satırı.
type Line struct {
	Diameter float64
	Length   float64
	Qty      int
}

// Registry hastaları ve implant satırlarını stokla tutarlı tutar: bir şubedeki stok
// ile o şubedeki hastalara yazılmış implantların toplamı her zaman korunur.
// Her işlem tek transaction'dır; bir stok ayarlaması reddedilirse hiçbir değişiklik kalmaz.
type Registry struct {
	db     *gorm.DB
	ledger *inventory.Ledger
	log    *zap.Logger
}

func NewRegistry(db *gorm.DB, ledger *inventory.Ledger, log *zap.Logger) *Registry {
	return &Registry{db: db, ledger: ledger, log: log}
}

// Create hastayı ekler ve her geçerli satır için stoktan düşer.
// Katalog dışı ölçüler ve adedi pozitif olmayan satırlar atlanır.
func (r *Registry) Create(ctx context.Context, branch, name string, lines []Line) (*models.Patient, error) {
	name, err := r.validate(branch, name)
	if err != nil {
		return nil, err
	}

	p := &models.Patient{Branch: branch, Name: name}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("hasta oluşturulamadı: %w", err)
		}
		implants, err := r.consume(ctx, tx, p, lines, models.ActionPatientAdd)
		if err != nil {
			return err
		}
		p.Implants = implants
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("Hasta eklendi", zap.Uint("patient_id", p.ID), zap.String("branch", branch), zap.Int("lines", len(p.Implants)))
	return p, nil
}

// Update eski implantların tamamını stoka iade eder, sonra yeni satırları baştan
// uygular. Satırlar karşılaştırılmaz; değişmeyen bir satır da iade + tüketim olarak
// iki log kaydı üretir.
func (r *Registry) Update(ctx context.Context, id uint, branch, name string, lines []Line) (*models.Patient, error) {
	name, err := r.validate(branch, name)
	if err != nil {
		return nil, err
	}

	var p models.Patient
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(ctx, tx, id, branch, &p); err != nil {
			return err
		}
		if err := r.release(ctx, tx, &p, models.ActionPatientEditRemove); err != nil {
			return err
		}
		if err := tx.Model(&p).Update("name", name).Error; err != nil {
			return fmt.Errorf("hasta güncellenemedi: %w", err)
		}
		p.Name = name
		implants, err := r.consume(ctx, tx, &p, lines, models.ActionPatientEditAdd)
		if err != nil {
			return err
		}
		p.Implants = implants
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("Hasta güncellendi", zap.Uint("patient_id", p.ID), zap.String("branch", branch), zap.Int("lines", len(p.Implants)))
	return &p, nil
}

// Delete hastanın tüm implantlarını stoka iade eder ve hastayı siler.
func (r *Registry) Delete(ctx context.Context, id uint, branch string) error {
	if !r.ledger.Catalog().HasBranch(branch) {
		return fmt.Errorf("%w: %s", config.ErrUnknownBranch, branch)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Patient
		if err := findForUpdate(ctx, tx, id, branch, &p); err != nil {
			return err
		}
		if err := r.release(ctx, tx, &p, models.ActionPatientDelete); err != nil {
			return err
		}
		if err := tx.Delete(&models.Patient{}, "id = ?", p.ID).Error; err != nil {
			return fmt.Errorf("hasta silinemedi: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info("Hasta silindi", zap.Uint("patient_id", id), zap.String("branch", branch))
	return nil
}

// Get şubedeki hastayı implant satırlarıyla birlikte döner. Hasta başka bir şubeye
// aitse Update ve Delete gibi ErrNotFound döner.
func (r *Registry) Get(ctx context.Context, id uint, branch string) (*models.Patient, error) {
	if !r.ledger.Catalog().HasBranch(branch) {
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBranch, branch)
	}

	var p models.Patient
	err := r.db.WithContext(ctx).
		Preload("Implants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&p, "id = ? AND branch = ?", id, branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w (id=%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("hasta okunamadı: %w", err)
	}
	return &p, nil
}

// List şubedeki hastaları ekleniş sırasıyla döner.
func (r *Registry) List(ctx context.Context, branch string) ([]models.Patient, error) {
	if !r.ledger.Catalog().HasBranch(branch) {
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBranch, branch)
	}

	var patients []models.Patient
	if err := r.db.WithContext(ctx).
		Preload("Implants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("branch = ?", branch).
		Order("id").
		Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("hastalar listelenemedi: %w", err)
	}
	return patients, nil
}

func (r *Registry) validate(branch, name string) (string, error) {
	if !r.ledger.Catalog().HasBranch(branch) {
		return "", fmt.Errorf("%w: %s", config.ErrUnknownBranch, branch)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

func findForUpdate(ctx context.Context, tx *gorm.DB, id uint, branch string, p *models.Patient) error {
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND branch = ?", id, branch).
		First(p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w (id=%d)", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("hasta okunamadı: %w", err)
	}
	return nil
}

// consume kabul edilen her satır için stoktan düşer ve implant kaydını yazar.
// Satırlar gelen sırayla işlenir; aynı ölçü iki kez gelirse iki ayrı ayarlama yapılır.
func (r *Registry) consume(ctx context.Context, tx *gorm.DB, p *models.Patient, lines []Line, reason models.StockAction) ([]models.Implant, error) {
	ledger := r.ledger.WithTx(tx)
	catalog := ledger.Catalog()

	implants := make([]models.Implant, 0, len(lines))
	for i, ln := range lines {
		if ln.Qty <= 0 || !catalog.HasSize(ln.Diameter, ln.Length) {
			r.log.Debug("Geçersiz implant satırı atlandı",
				zap.Int("index", i),
				zap.Float64("diameter", ln.Diameter),
				zap.Float64("length", ln.Length),
				zap.Int("qty", ln.Qty))
			continue
		}

		if _, err := ledger.Adjust(ctx, p.Branch, ln.Diameter, ln.Length, -ln.Qty, reason); err != nil {
			return nil, err
		}

		imp := models.Implant{PatientID: p.ID, Diameter: ln.Diameter, Length: ln.Length, Qty: ln.Qty}
		if err := tx.WithContext(ctx).Create(&imp).Error; err != nil {
			return nil, fmt.Errorf("implant kaydedilemedi: %w", err)
		}
		implants = append(implants, imp)
	}
	return implants, nil
}

// release hastanın mevcut implantlarını stoka iade eder ve kayıtlarını siler.
func (r *Registry) release(ctx context.Context, tx *gorm.DB, p *models.Patient, reason models.StockAction) error {
	var old []models.Implant
	if err := tx.WithContext(ctx).Where("patient_id = ?", p.ID).Order("id").Find(&old).Error; err != nil {
		return fmt.Errorf("implantlar okunamadı: %w", err)
	}

	ledger := r.ledger.WithTx(tx)
	for _, imp := range old {
		if _, err := ledger.Adjust(ctx, p.Branch, imp.Diameter, imp.Length, imp.Qty, reason); err != nil {
			return err
		}
	}

	if err := tx.WithContext(ctx).Where("patient_id = ?", p.ID).Delete(&models.Implant{}).Error; err != nil {
		return fmt.Errorf("implantlar silinemedi: %w", err)
	}
	return nil
}
