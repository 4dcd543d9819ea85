package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	BarberID uint   `json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barber"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	// Nil ClientID means a guest booking; guest fields are then required.
	ClientID *uint   `json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client,omitempty"`

	GuestName  string `gorm:"size:100" json:"guest_name"`
	GuestEmail string `gorm:"size:100" json:"guest_email"`
	GuestPhone string `gorm:"size:20" json:"guest_phone"`

	StartTime time.Time `json:"start_time"`

	// All amounts in minor currency units. The check constraint is defense in
	// depth; the split is validated in the application before every write.
	PriceCents         int64 `json:"price_cents"`
	AddonTotalCents    int64 `json:"addon_total_cents"`
	PlatformFeeCents   int64 `json:"platform_fee_cents"`
	BarberPayoutCents  int64 `json:"barber_payout_cents"`
	AmountChargedCents int64 `gorm:"check:chk_booking_split,platform_fee_cents + barber_payout_cents = amount_charged_cents" json:"amount_charged_cents"`

	PaymentMode     string  `gorm:"size:20;default:'full_service'" json:"payment_mode"`
	PaymentIntentID *string `gorm:"size:100;uniqueIndex" json:"payment_intent_id"`
	PaymentStatus   string  `gorm:"size:20;default:'pending'" json:"payment_status"`

	Status string `gorm:"size:20;default:'confirmed'" json:"status"`

	Notes string `gorm:"size:255" json:"notes"`

	Addons []BookingAddon `json:"addons"`

	CheckedInAt *time.Time `json:"checked_in_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingAddon snapshots the addon name and price at booking time so historical
// totals stay stable when the barber later edits addon pricing.
type BookingAddon struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookingID uint `json:"booking_id"`

	ServiceAddonID uint   `json:"service_addon_id"`
	Name           string `gorm:"size:100" json:"name"`
	PriceCents     int64  `json:"price_cents"`

	CreatedAt time.Time `json:"created_at"`
}
