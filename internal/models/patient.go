package models

import "time"

type Patient struct {
	ID        uint   `gorm:"primaryKey"`
	Branch    string `gorm:"size:100;index;not null"`
	Name      string `gorm:"size:200;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Implants []Implant `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE"`
}

func (Patient) TableName() string { return "patients" }

// Implant: Hastaya kullanılan bir ölçüden kaç adet tüketildiği.
type Implant struct {
	ID        uint    `gorm:"primaryKey"`
	PatientID uint    `gorm:"index;not null"`
	Diameter  float64 `gorm:"not null"`
	Length    float64 `gorm:"not null"`
	Qty       int     `gorm:"not null"`
}

func (Implant) TableName() string { return "implants" }
