package models

import "time"

type Review struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint   `gorm:"uniqueIndex" json:"booking_id"`
	BarberID  uint   `gorm:"index" json:"barber_id"`
	ClientID  uint   `json:"client_id"`
	Client    Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"size:1000" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
