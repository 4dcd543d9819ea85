package models

import "time"

type Barber struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`

	ShopName  string `gorm:"size:100" json:"shop_name"`
	Bio       string `gorm:"size:500" json:"bio"`
	Specialty string `gorm:"size:100" json:"specialty"`
	City      string `gorm:"size:100" json:"city"`
	Address   string `gorm:"size:255" json:"address"`
	Timezone  string `gorm:"size:50" json:"timezone"`
	PhotoURL  string `gorm:"size:500" json:"photo_url"`

	// Developer barbers bypass payment processing entirely (demo/QA accounts).
	Developer bool `gorm:"default:false" json:"developer"`

	StripeAccountID     string `gorm:"size:100" json:"-"`
	StripeAccountStatus string `gorm:"size:20;default:'unset'" json:"stripe_account_status"`
	StripeAccountReady  bool   `gorm:"default:false" json:"stripe_account_ready"`

	RatingAvg   float64 `gorm:"default:0" json:"rating_avg"`
	RatingCount int     `gorm:"default:0" json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
