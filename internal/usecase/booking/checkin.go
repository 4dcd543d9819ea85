package booking

import (
	"context"

	"github.com/bocm-app/bocm-api/internal/audit"
	domain "github.com/bocm-app/bocm-api/internal/domain/booking"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/timezone"
)

type CheckInBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCheckInBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CheckInBooking {
	return &CheckInBooking{
		repo:  repo,
		audit: audit,
	}
}

func (uc *CheckInBooking) Execute(
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
	if err := domain.CheckIn(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarberID: barberID,
		ActorID:  &barberID,
		Action:   "booking_checked_in",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
