package models

import "time"

type Service struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `json:"barber_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	DurationMin int    `json:"duration_min"`

	// Price in minor currency units (cents). All money math stays integer.
	PriceCents int64 `json:"price_cents"`

	Active bool `gorm:"default:true" json:"active"`

	Category string `gorm:"size:50" json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
