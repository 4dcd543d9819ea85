package models

import "time"

type ServiceAddon struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `json:"barber_id"`

	Name       string `gorm:"size:100;not null" json:"name"`
	PriceCents int64  `json:"price_cents"`
	Active     bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
