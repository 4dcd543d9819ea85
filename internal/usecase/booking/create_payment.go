package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bocm-app/bocm-api/internal/audit"
	domain "github.com/bocm-app/bocm-api/internal/domain/booking"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/payments"
	"github.com/bocm-app/bocm-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingPaymentInput struct {
	BarberID  uint
	ServiceID uint
	AddonIDs  []uint

	ClientID   *uint
	GuestName  string
	GuestEmail string
	GuestPhone string

	Date  string
	Time  string
	Notes string

	// Mode defaults to full service; fee-only is the in-person-cash flow where
	// just the booking fee moves through the processor.
	Mode payments.Mode
}

type CreateBookingPaymentResult struct {
	ClientSecret    string          `json:"client_secret,omitempty"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	Booking         *models.Booking `json:"booking,omitempty"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateBookingPayment struct {
	repo        domain.Repository
	processor   payments.Processor
	materialize *MaterializeBooking
	audit       *audit.Dispatcher
	currency    string
}

func NewCreateBookingPayment(
	repo domain.Repository,
	processor payments.Processor,
	materialize *MaterializeBooking,
	audit *audit.Dispatcher,
	currency string,
) *CreateBookingPayment {
	return &CreateBookingPayment{
		repo:        repo,
		processor:   processor,
		materialize: materialize,
		audit:       audit,
		currency:    currency,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute produces a client-usable payment authorization for the booking, or
// materializes a zero-cost booking directly for developer barbers. No booking
// row is written for paid flows; that only happens once payment is confirmed.
func (uc *CreateBookingPayment) Execute(
	ctx context.Context,
	in CreateBookingPaymentInput,
) (*CreateBookingPaymentResult, error) {

	// --------------------------------------------------
	// 1️⃣ Validation before any external call
	// --------------------------------------------------
	if err := domain.ValidateParticipants(in.ClientID, in.GuestName, in.GuestEmail, in.GuestPhone); err != nil {
		return nil, err
	}

	mode := in.Mode
	if mode == "" {
		mode = payments.ModeFullService
	}

	barber, err := uc.repo.GetBarberByID(ctx, in.BarberID)
	if err != nil {
		return nil, httperr.ErrBusiness("barber_not_found")
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(barber.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// 2️⃣ Service + addon snapshot
	// --------------------------------------------------
	service, err := uc.repo.GetService(ctx, in.BarberID, in.ServiceID)
	if err != nil || service.PriceCents <= 0 {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	addons, err := uc.repo.ListActiveAddons(ctx, in.BarberID, in.AddonIDs)
	if err != nil {
		return nil, err
	}
	if len(addons) != len(in.AddonIDs) {
		return nil, httperr.ErrBusiness("addon_not_found")
	}

	var addonTotal int64
	snapshots := make([]models.BookingAddon, 0, len(addons))
	for _, a := range addons {
		addonTotal += a.PriceCents
		snapshots = append(snapshots, models.BookingAddon{
			ServiceAddonID: a.ID,
			Name:           a.Name,
			PriceCents:     a.PriceCents,
		})
	}

	// --------------------------------------------------
	// 3️⃣ Time conflict
	// --------------------------------------------------
	end := start.Add(time.Duration(service.DurationMin) * time.Minute)
	conflict, err := uc.repo.HasTimeConflict(ctx, in.BarberID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, httperr.ErrBusiness("time_conflict")
	}

	// --------------------------------------------------
	// 4️⃣ Developer bypass — zero-cost booking, no processor
	// --------------------------------------------------
	if barber.Developer {
		b, err := uc.materialize.Execute(ctx, MaterializeInput{
			BarberID:   in.BarberID,
			ServiceID:  in.ServiceID,
			StartTime:  start,
			ClientID:   in.ClientID,
			GuestName:  in.GuestName,
			GuestEmail: in.GuestEmail,
			GuestPhone: in.GuestPhone,
			Notes:      in.Notes,
			Addons:     snapshots,
			Split:      payments.ZeroSplit(),
		})
		if err != nil {
			return nil, err
		}
		return &CreateBookingPaymentResult{Booking: b}, nil
	}

	// --------------------------------------------------
	// 5️⃣ Connected account must be chargeable (fails closed)
	// --------------------------------------------------
	if barber.StripeAccountID == "" {
		return nil, httperr.ErrBusiness("provider_not_payment_ready")
	}

	account, err := uc.processor.RetrieveAccount(ctx, barber.StripeAccountID)
	if err != nil {
		return nil, fmt.Errorf("retrieve account: %w", err)
	}

	uc.refreshAccountStatus(ctx, barber, account)

	if !account.Chargeable() {
		return nil, httperr.ErrBusiness("provider_not_payment_ready")
	}

	// --------------------------------------------------
	// 6️⃣ Fee split
	// --------------------------------------------------
	split, err := payments.ComputeSplit(mode, service.PriceCents+addonTotal)
	if err != nil {
		return nil, err
	}
	if err := payments.Validate(split); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 7️⃣ Payment authorization with destination split
	// --------------------------------------------------
	req := payments.IntentRequest{
		AmountCents: split.AmountChargedCents,
		Currency:    uc.currency,
		Metadata:    buildIntentMetadata(in, start, split, addonTotal, snapshots),
	}
	if mode == payments.ModeFullService {
		// Destination charge: processor splits funds between platform and
		// barber in one authorization. Fee-only keeps everything on the
		// platform account; the barber share is settled manually.
		req.ApplicationFeeCents = split.PlatformFeeCents
		req.DestinationAccountID = barber.StripeAccountID
	}

	intent, err := uc.processor.CreatePaymentIntent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	uc.audit.Dispatch(audit.Event{
		BarberID: in.BarberID,
		Action:   "booking_payment_created",
		Entity:   "payment_intent",
		Metadata: map[string]any{
			"payment_intent_id": intent.ID,
			"amount_cents":      split.AmountChargedCents,
			"mode":              string(mode),
		},
	})

	return &CreateBookingPaymentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// refreshAccountStatus stores the processor's live view so listings stay
// roughly honest. Never cached across requests: a stale "ready" here risks
// charging against a deactivated account.
func (uc *CreateBookingPayment) refreshAccountStatus(
	ctx context.Context,
	barber *models.Barber,
	account *payments.Account,
) {
	status := "pending"
	if account.Chargeable() {
		status = "active"
	}

	if barber.StripeAccountStatus == status && barber.StripeAccountReady == account.Chargeable() {
		return
	}

	barber.StripeAccountStatus = status
	barber.StripeAccountReady = account.Chargeable()
	if err := uc.repo.UpdateBarber(ctx, barber); err != nil {
		log.Printf("refresh account status for barber %d: %v", barber.ID, err)
	}
}

// ======================================================
// INTENT METADATA
// ======================================================

// Metadata is the recovery mechanism: the webhook path rebuilds the booking
// purely from what is stored on the intent.
func buildIntentMetadata(
	in CreateBookingPaymentInput,
	start time.Time,
	split payments.Split,
	addonTotal int64,
	addons []models.BookingAddon,
) map[string]string {

	md := map[string]string{
		"barber_id":           strconv.FormatUint(uint64(in.BarberID), 10),
		"service_id":          strconv.FormatUint(uint64(in.ServiceID), 10),
		"start_time":          start.Format(time.RFC3339),
		"notes":               in.Notes,
		"mode":                string(split.Mode),
		"price_cents":         strconv.FormatInt(split.PriceCents, 10),
		"addon_total_cents":   strconv.FormatInt(addonTotal, 10),
		"platform_fee_cents":  strconv.FormatInt(split.PlatformFeeCents, 10),
		"barber_payout_cents": strconv.FormatInt(split.BarberPayoutCents, 10),
	}

	if in.ClientID != nil {
		md["client_id"] = strconv.FormatUint(uint64(*in.ClientID), 10)
	} else {
		md["guest_name"] = in.GuestName
		md["guest_email"] = in.GuestEmail
		md["guest_phone"] = in.GuestPhone
	}

	if len(addons) > 0 {
		if raw, err := json.Marshal(addons); err == nil {
			md["addons"] = string(raw)
		}
	}

	return md
}
