package models

import "time"

type Notification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Recipient is addressed by role + id so barbers and clients share the table.
	RecipientRole string `gorm:"size:10;index:idx_notification_recipient" json:"recipient_role"`
	RecipientID   uint   `gorm:"index:idx_notification_recipient" json:"recipient_id"`

	Kind  string `gorm:"size:50" json:"kind"`
	Title string `gorm:"size:100" json:"title"`
	Body  string `gorm:"size:500" json:"body"`

	BookingID *uint `json:"booking_id"`

	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`
}
