package models

import "time"

type StockAction string

const (
	ActionManualEdit        StockAction = "MANUAL_EDIT"
	ActionPatientAdd        StockAction = "PATIENT_ADD"
	ActionPatientEditAdd    StockAction = "PATIENT_EDIT_ADD"
	ActionPatientEditRemove StockAction = "PATIENT_EDIT_REMOVE"
	ActionPatientDelete     StockAction = "PATIENT_DELETE"
)

func (a StockAction) Valid() bool {
	switch a {
	case ActionManualEdit, ActionPatientAdd, ActionPatientEditAdd, ActionPatientEditRemove, ActionPatientDelete:
		return true
	}
	return false
}

// StockLog: Stok adedindeki her değişimin kaydı. Sadece eklenir, güncellenmez/silinmez.
// Qty işaretlidir: tüketim negatif, iade pozitif.
type StockLog struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Branch    string      `gorm:"size:100;index;not null" json:"branch"`
	Diameter  float64     `gorm:"not null" json:"diameter"`
	Length    float64     `gorm:"not null" json:"length"`
	Qty       int         `gorm:"not null" json:"qty"`
	Action    StockAction `gorm:"size:32;not null" json:"action"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
}

func (StockLog) TableName() string { return "stock_log" }
