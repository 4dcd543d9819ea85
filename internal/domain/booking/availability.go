package booking

import "time"

type AvailabilityInput struct {
	BarberID  uint
	ServiceID uint
	Date      time.Time
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
