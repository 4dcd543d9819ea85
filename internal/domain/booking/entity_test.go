package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
)

func confirmedBooking() *models.Booking {
	return &models.Booking{Status: string(StatusConfirmed)}
}

func TestCheckInKeepsStatusConfirmed(t *testing.T) {
	b := confirmedBooking()
	now := time.Now()

	require.NoError(t, CheckIn(b, now))

	// Check-in records arrival; it is not a status transition.
	assert.Equal(t, string(StatusConfirmed), b.Status)
	require.NotNil(t, b.CheckedInAt)
	assert.Equal(t, now, *b.CheckedInAt)
}

func TestCancelSetsStatusAndTimestamp(t *testing.T) {
	b := confirmedBooking()
	now := time.Now()

	require.NoError(t, Cancel(b, now))
	assert.Equal(t, string(StatusCancelled), b.Status)
	require.NotNil(t, b.CancelledAt)
}

func TestCompleteSetsStatusAndTimestamp(t *testing.T) {
	b := confirmedBooking()
	now := time.Now()

	require.NoError(t, Complete(b, now))
	assert.Equal(t, string(StatusCompleted), b.Status)
	require.NotNil(t, b.CompletedAt)
}

func TestMarkNoShowSetsStatus(t *testing.T) {
	b := confirmedBooking()

	require.NoError(t, MarkNoShow(b, time.Now()))
	assert.Equal(t, string(StatusNoShow), b.Status)
}

func TestTransitionsRequireConfirmed(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusCancelled, StatusNoShow}

	for _, from := range terminal {
		b := &models.Booking{Status: string(from)}
		now := time.Now()

		assert.True(t, httperr.IsBusiness(CheckIn(b, now), "invalid_state"), "check-in from %s", from)
		assert.True(t, httperr.IsBusiness(Cancel(b, now), "invalid_state"), "cancel from %s", from)
		assert.True(t, httperr.IsBusiness(Complete(b, now), "invalid_state"), "complete from %s", from)
		assert.True(t, httperr.IsBusiness(MarkNoShow(b, now), "invalid_state"), "no-show from %s", from)
	}
}

func TestValidateParticipants(t *testing.T) {
	clientID := uint(7)

	// Registered client: guest fields are irrelevant.
	assert.NoError(t, ValidateParticipants(&clientID, "", "", ""))

	// Guest: all three contact fields required.
	assert.NoError(t, ValidateParticipants(nil, "Jay", "jay@example.com", "+15551234567"))

	cases := []struct {
		name, email, phone string
	}{
		{"", "jay@example.com", "+15551234567"},
		{"Jay", "", "+15551234567"},
		{"Jay", "jay@example.com", ""},
		{"   ", "jay@example.com", "+15551234567"},
		{"", "", ""},
	}
	for _, tc := range cases {
		err := ValidateParticipants(nil, tc.name, tc.email, tc.phone)
		assert.True(t, httperr.IsBusiness(err, "missing_guest_info"),
			"name=%q email=%q phone=%q", tc.name, tc.email, tc.phone)
	}
}
