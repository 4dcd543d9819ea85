package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bocm-app/bocm-api/internal/models"
)

// businessMessage maps domain error codes to the messages surfaced over the
// API. Unknown codes fall back to a generic message rather than leaking
// internals.
func businessMessage(code string) string {
	switch code {
	case "barber_not_found":
		return "Barber not found."
	case "service_not_found":
		return "Service not found or inactive."
	case "addon_not_found":
		return "One or more addons are unavailable."
	case "invalid_date_or_time":
		return "Invalid date or time."
	case "time_conflict":
		return "That time is no longer available."
	case "provider_not_payment_ready":
		return "This barber is not set up to take payments yet."
	case "missing_guest_info":
		return "Guest bookings require name, email, and phone."
	case "fee_reconciliation_mismatch":
		return "Payment amount does not match the booking total."
	case "invalid_intent_metadata":
		return "Payment is not linked to a booking."
	case "duplicate_payment_intent":
		return "This payment was already used for a booking."
	case "invalid_price":
		return "Invalid price."
	case "invalid_payment_mode":
		return "Invalid payment mode."
	case "booking_not_found":
		return "Booking not found."
	case "invalid_state":
		return "Booking is not in a state that allows this action."
	default:
		return "Request could not be processed."
	}
}

func bookingResponse(b *models.Booking) gin.H {
	resp := gin.H{
		"id":                   b.ID,
		"reference":            b.Reference,
		"barber_id":            b.BarberID,
		"service_id":           b.ServiceID,
		"start_time":           b.StartTime,
		"status":               b.Status,
		"payment_status":       b.PaymentStatus,
		"payment_mode":         b.PaymentMode,
		"price_cents":          b.PriceCents,
		"addon_total_cents":    b.AddonTotalCents,
		"platform_fee_cents":   b.PlatformFeeCents,
		"barber_payout_cents":  b.BarberPayoutCents,
		"amount_charged_cents": b.AmountChargedCents,
		"notes":                b.Notes,
		"addons":               b.Addons,
		"checked_in_at":        b.CheckedInAt,
		"cancelled_at":         b.CancelledAt,
		"completed_at":         b.CompletedAt,
		"created_at":           b.CreatedAt,
	}

	if b.ClientID != nil {
		resp["client_id"] = *b.ClientID
	} else {
		resp["guest_name"] = b.GuestName
		resp["guest_email"] = b.GuestEmail
		resp["guest_phone"] = b.GuestPhone
	}

	return resp
}

func bookingClientName(b *models.Booking) string {
	if b.Client != nil {
		return b.Client.Name
	}
	return b.GuestName
}
