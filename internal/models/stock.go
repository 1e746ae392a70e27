package models

// StockItem: Bir şubedeki tek bir implant ölçüsünün (çap x uzunluk) eldeki adedi.
// Şube x katalog kombinasyonu başına tam bir satır vardır; satırlar silinmez.
type StockItem struct {
	Branch   string  `gorm:"primaryKey;size:100" json:"branch"`
	Diameter float64 `gorm:"primaryKey" json:"diameter"`
	Length   float64 `gorm:"primaryKey" json:"length"`
	Qty      int     `gorm:"not null;default:0" json:"qty"`
}

func (StockItem) TableName() string { return "stock" }
