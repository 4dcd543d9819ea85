package booking

import (
	"strings"
	"time"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func CheckIn(b *models.Booking, now time.Time) error {
	if err := CanCheckIn(Status(b.Status)); err != nil {
		return err
	}

	b.CheckedInAt = &now
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	if err := CanCancel(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	if err := CanComplete(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCompleted)
	b.CompletedAt = &now
	return nil
}

func MarkNoShow(b *models.Booking, now time.Time) error {
	if err := CanMarkNoShow(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusNoShow)
	return nil
}

// ===============================
// Participants
// ===============================

// ValidateParticipants enforces guest-vs-client exclusivity: a booking without
// a registered client must carry full guest contact details.
func ValidateParticipants(clientID *uint, guestName, guestEmail, guestPhone string) error {
	if clientID != nil && *clientID != 0 {
		return nil
	}

	if strings.TrimSpace(guestName) == "" ||
		strings.TrimSpace(guestEmail) == "" ||
		strings.TrimSpace(guestPhone) == "" {
		return httperr.ErrBusiness("missing_guest_info")
	}

	return nil
}
