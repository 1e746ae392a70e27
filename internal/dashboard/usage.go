package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

const maxBuckets = 366

var ErrInvalidPeriod = errors.New("geçersiz periyot")

// DefaultCount periyot için varsayılan dilim sayısı.
func DefaultCount(p Period) int {
	switch p {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	}
	return 7
}

type UsagePoint struct {
	Label     string `json:"label"` // dilimin ilk günü
	Used      int    `json:"used"`
	Returned  int    `json:"returned"`
	Net       int    `json:"net"`
	Restocked int    `json:"restocked"`
}

type UsageChart struct {
	Branch string       `json:"branch"`
	Period Period       `json:"period"`
	From   string       `json:"from"`
	To     string       `json:"to"`
	Points []UsagePoint `json:"points"`
	Totals UsagePoint   `json:"totals"`
}

// Usage şubenin son count dilimdeki implant kullanımını stok hareketlerinden hesaplar.
// Hastaya yazılan adetler Used, iade edilenler Returned, elle yapılan artışlar
// Restocked olarak sayılır. Boş dilimler sıfırla döner.
func Usage(ctx context.Context, db *gorm.DB, branch string, period Period, count int, now time.Time) (*UsageChart, error) {
	if count <= 0 || count > maxBuckets {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidPeriod, count)
	}

	loc := now.Location()
	start, end, err := window(period, count, now)
	if err != nil {
		return nil, err
	}

	var logs []models.StockLog
	if err := db.WithContext(ctx).
		Where("branch = ? AND created_at >= ? AND created_at < ?", branch, start.UTC(), end.UTC()).
		Order("id").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("stok hareketleri okunamadı: %w", err)
	}

	points := make([]UsagePoint, 0, count)
	index := make(map[string]int, count)
	for b := start; b.Before(end); b = next(period, b) {
		label := b.Format("2006-01-02")
		index[label] = len(points)
		points = append(points, UsagePoint{Label: label})
	}

	for _, r := range logs {
		i, ok := index[bucketOf(period, r.CreatedAt.In(loc)).Format("2006-01-02")]
		if !ok {
			continue
		}
		p := &points[i]
		switch r.Action {
		case models.ActionPatientAdd, models.ActionPatientEditAdd:
			p.Used += -r.Qty
		case models.ActionPatientEditRemove, models.ActionPatientDelete:
			p.Returned += r.Qty
		case models.ActionManualEdit:
			if r.Qty > 0 {
				p.Restocked += r.Qty
			}
		}
	}

	chart := &UsageChart{
		Branch: branch,
		Period: period,
		From:   start.Format("2006-01-02"),
		To:     end.AddDate(0, 0, -1).Format("2006-01-02"),
		Points: points,
	}
	for i := range points {
		points[i].Net = points[i].Used - points[i].Returned
		chart.Totals.Used += points[i].Used
		chart.Totals.Returned += points[i].Returned
		chart.Totals.Restocked += points[i].Restocked
	}
	chart.Totals.Net = chart.Totals.Used - chart.Totals.Returned
	return chart, nil
}

// window [start, end) aralığını now'ın saat diliminde döner.
func window(period Period, count int, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	last := bucketOf(period, now)
	start := last
	for i := 1; i < count; i++ {
		start = prev(period, start)
	}
	return start, next(period, last), nil
}

// bucketOf t'nin düştüğü dilimin başlangıcı. Haftalar pazartesi başlar.
func bucketOf(period Period, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch period {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return day
}

func next(period Period, b time.Time) time.Time {
	switch period {
	case PeriodWeekly:
		return b.AddDate(0, 0, 7)
	case PeriodMonthly:
		return b.AddDate(0, 1, 0)
	}
	return b.AddDate(0, 0, 1)
}

func prev(period Period, b time.Time) time.Time {
	switch period {
	case PeriodWeekly:
		return b.AddDate(0, 0, -7)
	case PeriodMonthly:
		return b.AddDate(0, -1, 0)
	}
	return b.AddDate(0, 0, -1)
}
