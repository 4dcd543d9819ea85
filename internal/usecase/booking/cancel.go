package booking

import (
	"context"

	"github.com/bocm-app/bocm-api/internal/audit"
	domain "github.com/bocm-app/bocm-api/internal/domain/booking"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/timezone"
)

type CancelBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CancelBooking {
	return &CancelBooking{
		repo:  repo,
		audit: audit,
	}
}

// Execute cancels a confirmed booking. Money already captured is not touched
// here; refund handling is a separate settlement concern.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	barberID uint,
	bookingID uint,
) (*models.Booking, error) {

	barber, err := uc.repo.GetBarberByID(ctx, barberID)
	if err != nil {
		return nil, err
	}

	b, err := uc.repo.GetBookingForBarber(ctx, bookingID, barberID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	now := timezone.NowIn(barber.Timezone)
	if err := domain.Cancel(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarberID: barberID,
		ActorID:  &barberID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
