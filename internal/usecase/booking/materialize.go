package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bocm-app/bocm-api/internal/audit"
	domain "github.com/bocm-app/bocm-api/internal/domain/booking"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/notify"
	"github.com/bocm-app/bocm-api/internal/payments"
)

// ======================================================
// INPUT
// ======================================================

type MaterializeInput struct {
	// PaymentIntentID is empty only for developer (zero-cost) bookings; when
	// set it is the idempotency key for the whole operation.
	PaymentIntentID string

	// AmountCaptured is what the processor reports as actually received.
	// It must reconcile with the split or the booking is rejected.
	AmountCaptured int64

	Split           payments.Split
	AddonTotalCents int64

	BarberID  uint
	ServiceID uint
	StartTime time.Time

	ClientID   *uint
	GuestName  string
	GuestEmail string
	GuestPhone string

	Notes  string
	Addons []models.BookingAddon
}

// ======================================================
// USE CASE
// ======================================================

// MaterializeBooking is the single place a booking row comes into existence.
// Both the webhook handler and the client polling handler funnel into it,
// which is what makes the at-most-once guarantee enforceable.
type MaterializeBooking struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	notify *notify.Dispatcher
}

func NewMaterializeBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notify *notify.Dispatcher,
) *MaterializeBooking {
	return &MaterializeBooking{
		repo:   repo,
		audit:  audit,
		notify: notify,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *MaterializeBooking) Execute(
	ctx context.Context,
	in MaterializeInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// 1️⃣ Required fields + guest exclusivity
	// --------------------------------------------------
	if in.BarberID == 0 || in.ServiceID == 0 || in.StartTime.IsZero() {
		return nil, httperr.ErrBusiness("invalid_request")
	}
	if err := domain.ValidateParticipants(in.ClientID, in.GuestName, in.GuestEmail, in.GuestPhone); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Idempotency fast path
	// --------------------------------------------------
	if in.PaymentIntentID != "" {
		if existing, err := uc.repo.FindBookingByPaymentIntent(ctx, in.PaymentIntentID); err == nil && existing != nil {
			return existing, nil
		}
	}

	// --------------------------------------------------
	// 3️⃣ Fee reconciliation — never auto-corrected
	// --------------------------------------------------
	if err := payments.Validate(in.Split); err != nil {
		return nil, err
	}
	if in.AmountCaptured != in.Split.AmountChargedCents {
		log.Printf(
			"FEE RECONCILIATION MISMATCH: intent=%s captured=%d expected=%d (fee=%d payout=%d)",
			in.PaymentIntentID, in.AmountCaptured, in.Split.AmountChargedCents,
			in.Split.PlatformFeeCents, in.Split.BarberPayoutCents,
		)
		return nil, httperr.ErrBusiness("fee_reconciliation_mismatch")
	}

	// --------------------------------------------------
	// 4️⃣ Single write, confirmed + succeeded
	// --------------------------------------------------
	paymentStatus := domain.PaymentSucceeded

	b := &models.Booking{
		Reference: uuid.NewString(),

		BarberID:  in.BarberID,
		ServiceID: in.ServiceID,
		ClientID:  in.ClientID,

		GuestName:  in.GuestName,
		GuestEmail: in.GuestEmail,
		GuestPhone: in.GuestPhone,

		StartTime: in.StartTime,

		PriceCents:         in.Split.PriceCents,
		AddonTotalCents:    in.AddonTotalCents,
		PlatformFeeCents:   in.Split.PlatformFeeCents,
		BarberPayoutCents:  in.Split.BarberPayoutCents,
		AmountChargedCents: in.Split.AmountChargedCents,

		PaymentMode:   string(in.Split.Mode),
		PaymentStatus: string(paymentStatus),
		Status:        string(domain.StatusConfirmed),
		Notes:         in.Notes,
		Addons:        in.Addons,
	}
	if in.PaymentIntentID != "" {
		b.PaymentIntentID = &in.PaymentIntentID
	}

	if err := uc.repo.CreateBooking(ctx, b); err != nil {
		// A concurrent webhook/poll race lost to the unique index on the
		// payment intent id; the winner's row is the booking.
		if httperr.IsBusiness(err, "duplicate_payment_intent") && in.PaymentIntentID != "" {
			return uc.repo.FindBookingByPaymentIntent(ctx, in.PaymentIntentID)
		}
		return nil, err
	}

	// --------------------------------------------------
	// 5️⃣ Best-effort downstream — never fails the booking
	// --------------------------------------------------
	uc.notifyParticipants(ctx, b)

	uc.audit.Dispatch(audit.Event{
		BarberID: b.BarberID,
		Action:   "booking_confirmed",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{
			"payment_intent_id": in.PaymentIntentID,
			"amount_cents":      b.AmountChargedCents,
		},
	})

	return b, nil
}

func (uc *MaterializeBooking) notifyParticipants(ctx context.Context, b *models.Booking) {
	when := b.StartTime.Format("Mon Jan 2, 3:04 PM")

	if barber, err := uc.repo.GetBarberByID(ctx, b.BarberID); err == nil {
		uc.notify.Dispatch(notify.Event{
			RecipientRole: "barber",
			RecipientID:   barber.ID,
			Phone:         barber.Phone,
			Email:         barber.Email,
			Kind:          "booking_confirmed",
			Title:         "New booking",
			Body:          fmt.Sprintf("New booking on %s.", when),
			BookingID:     &b.ID,
		})
	}

	ev := notify.Event{
		RecipientRole: "client",
		Kind:          "booking_confirmed",
		Title:         "Booking confirmed",
		Body:          fmt.Sprintf("Your booking on %s is confirmed.", when),
		BookingID:     &b.ID,
	}
	if b.ClientID != nil {
		if client, err := uc.repo.GetClientByID(ctx, *b.ClientID); err == nil {
			ev.RecipientID = client.ID
			ev.Phone = client.Phone
			ev.Email = client.Email
		}
	} else {
		ev.Phone = b.GuestPhone
		ev.Email = b.GuestEmail
	}
	uc.notify.Dispatch(ev)
}

// ======================================================
// FROM INTENT
// ======================================================

// InputFromIntent rebuilds a materialization input from the metadata stored on
// the payment authorization. Used by both confirmation paths.
func InputFromIntent(intent *payments.Intent) (MaterializeInput, error) {
	md := intent.Metadata

	barberID, err1 := strconv.ParseUint(md["barber_id"], 10, 64)
	serviceID, err2 := strconv.ParseUint(md["service_id"], 10, 64)
	start, err3 := time.Parse(time.RFC3339, md["start_time"])
	if err1 != nil || err2 != nil || err3 != nil {
		return MaterializeInput{}, httperr.ErrBusiness("invalid_intent_metadata")
	}

	price, _ := strconv.ParseInt(md["price_cents"], 10, 64)
	addonTotal, _ := strconv.ParseInt(md["addon_total_cents"], 10, 64)
	fee, _ := strconv.ParseInt(md["platform_fee_cents"], 10, 64)
	payout, _ := strconv.ParseInt(md["barber_payout_cents"], 10, 64)

	in := MaterializeInput{
		PaymentIntentID: intent.ID,
		AmountCaptured:  intent.AmountReceivedCents,
		Split: payments.Split{
			Mode:               payments.Mode(md["mode"]),
			PriceCents:         price,
			PlatformFeeCents:   fee,
			BarberPayoutCents:  payout,
			AmountChargedCents: intent.AmountCents,
		},
		AddonTotalCents: addonTotal,
		BarberID:        uint(barberID),
		ServiceID:       uint(serviceID),
		StartTime:       start,
		GuestName:       md["guest_name"],
		GuestEmail:      md["guest_email"],
		GuestPhone:      md["guest_phone"],
		Notes:           md["notes"],
	}

	if raw := md["client_id"]; raw != "" {
		id64, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return MaterializeInput{}, httperr.ErrBusiness("invalid_intent_metadata")
		}
		id := uint(id64)
		in.ClientID = &id
	}

	if raw := md["addons"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Addons); err != nil {
			return MaterializeInput{}, httperr.ErrBusiness("invalid_intent_metadata")
		}
	}

	return in, nil
}
