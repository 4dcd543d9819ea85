package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
)

func seedConfirmedBooking(repo *fakeRepo) *models.Booking {
	b := &models.Booking{
		BarberID:  1,
		ServiceID: 10,
		StartTime: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Status:    "confirmed",
		GuestName: "Jay",
	}
	_ = repo.CreateBooking(context.Background(), b)
	return b
}

func TestCheckInThenComplete(t *testing.T) {
	repo := newFakeRepo()
	auditD, _ := testDispatchers()
	seeded := seedConfirmedBooking(repo)

	checkIn := NewCheckInBooking(repo, auditD)
	b, err := checkIn.Execute(context.Background(), 1, seeded.ID)
	require.NoError(t, err)

	// Check-in is an arrival marker, not a status transition.
	assert.Equal(t, "confirmed", b.Status)
	assert.NotNil(t, b.CheckedInAt)

	complete := NewCompleteBooking(repo, auditD)
	b, err = complete.Execute(context.Background(), 1, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", b.Status)
	assert.NotNil(t, b.CompletedAt)
}

func TestCancelAfterCompleteRejected(t *testing.T) {
	repo := newFakeRepo()
	auditD, _ := testDispatchers()
	seeded := seedConfirmedBooking(repo)

	complete := NewCompleteBooking(repo, auditD)
	_, err := complete.Execute(context.Background(), 1, seeded.ID)
	require.NoError(t, err)

	cancel := NewCancelBooking(repo, auditD)
	_, err = cancel.Execute(context.Background(), 1, seeded.ID)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestNoShowLeavesNoCompletionTimestamp(t *testing.T) {
	repo := newFakeRepo()
	auditD, _ := testDispatchers()
	seeded := seedConfirmedBooking(repo)

	noShow := NewMarkNoShow(repo, auditD)
	b, err := noShow.Execute(context.Background(), 1, seeded.ID)
	require.NoError(t, err)

	assert.Equal(t, "no_show", b.Status)
	assert.Nil(t, b.CompletedAt)
}

func TestTransitionsScopedToOwningBarber(t *testing.T) {
	repo := newFakeRepo()
	auditD, _ := testDispatchers()
	seeded := seedConfirmedBooking(repo)

	cancel := NewCancelBooking(repo, auditD)
	_, err := cancel.Execute(context.Background(), 99, seeded.ID)
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}
