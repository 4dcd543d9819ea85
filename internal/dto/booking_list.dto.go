package dto

import "time"

type BookingListDTO struct {
	ID            uint      `json:"id"`
	Reference     string    `json:"reference"`
	StartTime     time.Time `json:"start_time"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	ClientName    string    `json:"client_name"`
	ServiceName   string    `json:"service_name"`
	PriceCents    int64     `json:"price_cents"`
}
