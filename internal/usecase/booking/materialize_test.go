package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/payments"
)

func validMaterializeInput(t *testing.T) MaterializeInput {
	t.Helper()

	split, err := payments.ComputeSplit(payments.ModeFullService, 3000)
	require.NoError(t, err)

	return MaterializeInput{
		PaymentIntentID: "pi_abc",
		AmountCaptured:  split.AmountChargedCents,
		Split:           split,
		BarberID:        1,
		ServiceID:       10,
		StartTime:       time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		GuestName:       "Jay",
		GuestEmail:      "jay@example.com",
		GuestPhone:      "+15551234567",
	}
}

func newMaterializer(repo *fakeRepo) *MaterializeBooking {
	auditD, notifyD := testDispatchers()
	return NewMaterializeBooking(repo, auditD, notifyD)
}

func TestMaterializeCreatesConfirmedBooking(t *testing.T) {
	repo := newFakeRepo()
	uc := newMaterializer(repo)

	b, err := uc.Execute(context.Background(), validMaterializeInput(t))
	require.NoError(t, err)

	assert.Equal(t, "confirmed", b.Status)
	assert.Equal(t, "succeeded", b.PaymentStatus)
	assert.NotEmpty(t, b.Reference)
	require.NotNil(t, b.PaymentIntentID)
	assert.Equal(t, "pi_abc", *b.PaymentIntentID)

	assert.Equal(t, int64(3000), b.PriceCents)
	assert.Equal(t, int64(203), b.PlatformFeeCents)
	assert.Equal(t, int64(3135), b.BarberPayoutCents)
	assert.Equal(t, int64(3338), b.AmountChargedCents)
}

func TestMaterializeIsIdempotentPerIntent(t *testing.T) {
	repo := newFakeRepo()
	uc := newMaterializer(repo)
	in := validMaterializeInput(t)

	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// Webhook and polling both confirm the same intent; only one row may exist.
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.bookings, 1)
}

func TestMaterializeRaceResolvesToWinner(t *testing.T) {
	repo := newFakeRepo()
	uc := newMaterializer(repo)
	in := validMaterializeInput(t)

	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// Simulate losing the insert race: the fast-path lookup misses, the unique
	// index rejects the write, and the winner's row must come back.
	repo.missLookups = 1

	got, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Len(t, repo.bookings, 1)
}

func TestMaterializeRejectsAmountMismatch(t *testing.T) {
	repo := newFakeRepo()
	uc := newMaterializer(repo)

	in := validMaterializeInput(t)
	in.AmountCaptured = in.Split.AmountChargedCents - 100

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "fee_reconciliation_mismatch"))
	assert.Empty(t, repo.bookings)
}

func TestMaterializeRejectsBrokenSplit(t *testing.T) {
	repo := newFakeRepo()
	uc := newMaterializer(repo)

	in := validMaterializeInput(t)
	in.Split.BarberPayoutCents += 7

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "fee_reconciliation_mismatch"))
	assert.Empty(t, repo.bookings)
}

func TestMaterializeRequiresGuestInfoWithoutClient(t *testing.T) {
	repo := newFakeRepo()
	uc := newMaterializer(repo)

	in := validMaterializeInput(t)
	in.GuestPhone = ""

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "missing_guest_info"))
	assert.Empty(t, repo.bookings)
}

func TestMaterializeAcceptsRegisteredClientWithoutGuestInfo(t *testing.T) {
	repo := newFakeRepo()
	uc := newMaterializer(repo)

	clientID := uint(42)
	in := validMaterializeInput(t)
	in.ClientID = &clientID
	in.GuestName = ""
	in.GuestEmail = ""
	in.GuestPhone = ""

	b, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, b.ClientID)
	assert.Equal(t, clientID, *b.ClientID)
}

func TestMaterializeZeroSplitBooking(t *testing.T) {
	repo := newFakeRepo()
	uc := newMaterializer(repo)

	in := validMaterializeInput(t)
	in.PaymentIntentID = ""
	in.AmountCaptured = 0
	in.Split = payments.ZeroSplit()

	b, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Nil(t, b.PaymentIntentID)
	assert.Zero(t, b.AmountChargedCents)
	assert.Zero(t, b.PlatformFeeCents)
	assert.Zero(t, b.BarberPayoutCents)
	assert.Equal(t, "confirmed", b.Status)
}

func TestInputFromIntentRoundTrip(t *testing.T) {
	split, err := payments.ComputeSplit(payments.ModeFullService, 4500)
	require.NoError(t, err)

	start := time.Date(2026, 5, 2, 14, 30, 0, 0, time.UTC)
	in := CreateBookingPaymentInput{
		BarberID:   3,
		ServiceID:  11,
		GuestName:  "Sam",
		GuestEmail: "sam@example.com",
		GuestPhone: "+15550001111",
		Notes:      "fade",
	}

	md := buildIntentMetadata(in, start, split, 500, nil)

	intent := &payments.Intent{
		ID:                  "pi_round",
		Status:              payments.IntentStatusSucceeded,
		AmountCents:         split.AmountChargedCents,
		AmountReceivedCents: split.AmountChargedCents,
		Metadata:            md,
	}

	got, err := InputFromIntent(intent)
	require.NoError(t, err)

	assert.Equal(t, "pi_round", got.PaymentIntentID)
	assert.Equal(t, uint(3), got.BarberID)
	assert.Equal(t, uint(11), got.ServiceID)
	assert.True(t, start.Equal(got.StartTime))
	assert.Equal(t, split.PlatformFeeCents, got.Split.PlatformFeeCents)
	assert.Equal(t, split.BarberPayoutCents, got.Split.BarberPayoutCents)
	assert.Equal(t, split.AmountChargedCents, got.Split.AmountChargedCents)
	assert.Equal(t, int64(500), got.AddonTotalCents)
	assert.Equal(t, "Sam", got.GuestName)
	assert.Nil(t, got.ClientID)
}

func TestInputFromIntentRejectsMissingMetadata(t *testing.T) {
	intent := &payments.Intent{
		ID:       "pi_bad",
		Metadata: map[string]string{"barber_id": "not-a-number"},
	}

	_, err := InputFromIntent(intent)
	assert.True(t, httperr.IsBusiness(err, "invalid_intent_metadata"))
}
