package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

const (
	DefaultLimit = 200
	MaxLimit     = 1000
)

var ErrInvalidRecord = errors.New("geçersiz stok log kaydı")

// Log stok değişim geçmişidir. Kayıtlar yalnızca eklenir; bu tip güncelleme veya
// silme sunmaz.
type Log struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{db: db, now: now}
}

// WithTx aynı log'u verilen transaction üzerinde çalışacak şekilde döner.
func (l *Log) WithTx(tx *gorm.DB) *Log {
	return &Log{db: tx, now: l.now}
}

// Append yeni bir kayıt ekler. CreatedAt boşsa saatten UTC olarak doldurulur;
// sqlite zamanı metin olarak sakladığı için aralık sorguları buna dayanır.
func (l *Log) Append(ctx context.Context, rec *models.StockLog) error {
	if rec.ID != 0 {
		return fmt.Errorf("%w: kayıt zaten yazılmış (id=%d)", ErrInvalidRecord, rec.ID)
	}
	if !rec.Action.Valid() {
		return fmt.Errorf("%w: bilinmeyen işlem %q", ErrInvalidRecord, rec.Action)
	}
	if rec.Qty == 0 {
		return fmt.Errorf("%w: adet değişimi sıfır olamaz", ErrInvalidRecord)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = l.now().UTC()
	}

	if err := l.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("stok log kaydedilemedi: %w", err)
	}
	return nil
}

// Recent en yeni kayıtları id'ye göre azalan sırada döner. branch boşsa tüm şubeler.
func (l *Log) Recent(ctx context.Context, branch string, limit int) ([]models.StockLog, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := l.db.WithContext(ctx).Model(&models.StockLog{})
	if branch != "" {
		q = q.Where("branch = ?", branch)
	}

	var logs []models.StockLog
	if err := q.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("loglar listelenemedi: %w", err)
	}
	return logs, nil
}
