package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/payments"
)

func newCreatePayment(repo *fakeRepo, proc *fakeProcessor) *CreateBookingPayment {
	auditD, notifyD := testDispatchers()
	materialize := NewMaterializeBooking(repo, auditD, notifyD)
	return NewCreateBookingPayment(repo, proc, materialize, auditD, "usd")
}

func guestInput() CreateBookingPaymentInput {
	return CreateBookingPaymentInput{
		BarberID:   1,
		ServiceID:  10,
		GuestName:  "Jay",
		GuestEmail: "jay@example.com",
		GuestPhone: "+15551234567",
		Date:       "2026-03-14",
		Time:       "10:00",
	}
}

func chargeableAccount() *payments.Account {
	return &payments.Account{
		ID:               "acct_1",
		ChargesEnabled:   true,
		DetailsSubmitted: true,
		PayoutsEnabled:   true,
	}
}

func TestCreatePaymentFullService(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.StripeAccountID = "acct_1"
	proc := &fakeProcessor{account: chargeableAccount()}
	uc := newCreatePayment(repo, proc)

	res, err := uc.Execute(context.Background(), guestInput())
	require.NoError(t, err)

	assert.Equal(t, "pi_test", res.PaymentIntentID)
	assert.Equal(t, "pi_test_secret", res.ClientSecret)
	assert.Nil(t, res.Booking)

	// Destination charge carries the platform fee and the barber's account.
	assert.Equal(t, int64(3338), proc.lastIntentReq.AmountCents)
	assert.Equal(t, int64(203), proc.lastIntentReq.ApplicationFeeCents)
	assert.Equal(t, "acct_1", proc.lastIntentReq.DestinationAccountID)
	assert.Equal(t, "usd", proc.lastIntentReq.Currency)

	// No booking row exists until the payment is confirmed.
	assert.Empty(t, repo.bookings)
}

func TestCreatePaymentFeeOnlyKeepsFundsOnPlatform(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.StripeAccountID = "acct_1"
	proc := &fakeProcessor{account: chargeableAccount()}
	uc := newCreatePayment(repo, proc)

	in := guestInput()
	in.Mode = payments.ModeFeeOnly

	_, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, payments.FixedFeeCents, proc.lastIntentReq.AmountCents)
	assert.Zero(t, proc.lastIntentReq.ApplicationFeeCents)
	assert.Empty(t, proc.lastIntentReq.DestinationAccountID)
}

func TestCreatePaymentAddonsIncludedInCharge(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.StripeAccountID = "acct_1"
	repo.addons = []models.ServiceAddon{
		{ID: 20, Name: "Beard trim", PriceCents: 1000, Active: true},
		{ID: 21, Name: "Hot towel", PriceCents: 500, Active: true},
	}
	proc := &fakeProcessor{account: chargeableAccount()}
	uc := newCreatePayment(repo, proc)

	in := guestInput()
	in.AddonIDs = []uint{20, 21}

	_, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// 3000 service + 1500 addons + 338 fee
	assert.Equal(t, int64(4838), proc.lastIntentReq.AmountCents)
	assert.Equal(t, "1500", proc.lastIntentReq.Metadata["addon_total_cents"])
}

func TestCreatePaymentRejectsInactiveAddon(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.StripeAccountID = "acct_1"
	repo.addons = []models.ServiceAddon{
		{ID: 20, Name: "Beard trim", PriceCents: 1000, Active: false},
	}
	proc := &fakeProcessor{account: chargeableAccount()}
	uc := newCreatePayment(repo, proc)

	in := guestInput()
	in.AddonIDs = []uint{20}

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "addon_not_found"))
	assert.Zero(t, proc.createIntentCalls)
}

func TestCreatePaymentFailsClosedWithoutAccount(t *testing.T) {
	repo := newFakeRepo() // no StripeAccountID
	proc := &fakeProcessor{}
	uc := newCreatePayment(repo, proc)

	_, err := uc.Execute(context.Background(), guestInput())
	assert.True(t, httperr.IsBusiness(err, "provider_not_payment_ready"))
	assert.Zero(t, proc.retrieveAccountCalls)
	assert.Zero(t, proc.createIntentCalls)
}

func TestCreatePaymentFailsClosedOnNonChargeableAccount(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.StripeAccountID = "acct_1"
	proc := &fakeProcessor{account: &payments.Account{
		ID:               "acct_1",
		ChargesEnabled:   false,
		DetailsSubmitted: true,
	}}
	uc := newCreatePayment(repo, proc)

	_, err := uc.Execute(context.Background(), guestInput())
	assert.True(t, httperr.IsBusiness(err, "provider_not_payment_ready"))

	// The account was checked but no charge was attempted.
	assert.Equal(t, 1, proc.retrieveAccountCalls)
	assert.Zero(t, proc.createIntentCalls)

	// The live status is persisted for the browse surface.
	assert.Equal(t, "pending", repo.barber.StripeAccountStatus)
	assert.False(t, repo.barber.StripeAccountReady)
}

func TestCreatePaymentSurvivesStatusRefreshFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.StripeAccountID = "acct_1"
	repo.updateBarberErr = errors.New("connection reset")
	proc := &fakeProcessor{account: chargeableAccount()}
	uc := newCreatePayment(repo, proc)

	// The status write is best effort; a failed refresh must not block the
	// charge.
	res, err := uc.Execute(context.Background(), guestInput())
	require.NoError(t, err)
	assert.Equal(t, "pi_test", res.PaymentIntentID)
	assert.Equal(t, 1, proc.createIntentCalls)
}

func TestCreatePaymentDeveloperBypass(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.Developer = true
	proc := &fakeProcessor{}
	uc := newCreatePayment(repo, proc)

	res, err := uc.Execute(context.Background(), guestInput())
	require.NoError(t, err)

	// Booking confirmed immediately, zero amounts, processor never touched.
	require.NotNil(t, res.Booking)
	assert.Equal(t, "confirmed", res.Booking.Status)
	assert.Zero(t, res.Booking.AmountChargedCents)
	assert.Zero(t, res.Booking.PlatformFeeCents)
	assert.Zero(t, res.Booking.BarberPayoutCents)
	assert.Nil(t, res.Booking.PaymentIntentID)

	assert.Zero(t, proc.retrieveAccountCalls)
	assert.Zero(t, proc.createIntentCalls)
}

func TestCreatePaymentTimeConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.StripeAccountID = "acct_1"
	repo.conflict = true
	proc := &fakeProcessor{account: chargeableAccount()}
	uc := newCreatePayment(repo, proc)

	_, err := uc.Execute(context.Background(), guestInput())
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))
	assert.Zero(t, proc.createIntentCalls)
}

func TestCreatePaymentRejectsBadDate(t *testing.T) {
	repo := newFakeRepo()
	proc := &fakeProcessor{}
	uc := newCreatePayment(repo, proc)

	in := guestInput()
	in.Date = "14-03-2026"

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "invalid_date_or_time"))
}

func TestCreatePaymentRequiresGuestInfo(t *testing.T) {
	repo := newFakeRepo()
	proc := &fakeProcessor{}
	uc := newCreatePayment(repo, proc)

	in := guestInput()
	in.GuestEmail = ""

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "missing_guest_info"))
}

func TestCreatePaymentMetadataCarriesBookingState(t *testing.T) {
	repo := newFakeRepo()
	repo.barber.StripeAccountID = "acct_1"
	proc := &fakeProcessor{account: chargeableAccount()}
	uc := newCreatePayment(repo, proc)

	clientID := uint(42)
	in := guestInput()
	in.ClientID = &clientID
	in.GuestName = ""
	in.GuestEmail = ""
	in.GuestPhone = ""
	in.Notes = "fade, line up"

	_, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	md := proc.lastIntentReq.Metadata
	assert.Equal(t, "1", md["barber_id"])
	assert.Equal(t, "10", md["service_id"])
	assert.Equal(t, "42", md["client_id"])
	assert.Equal(t, "fade, line up", md["notes"])
	assert.Equal(t, "3000", md["price_cents"])
	assert.Equal(t, "203", md["platform_fee_cents"])
	assert.NotContains(t, md, "guest_name")
}
