package booking

import (
	"context"
	"time"

	"github.com/bocm-app/bocm-api/internal/models"
)

type Interval struct {
	Start time.Time
	End   time.Time
}

type Repository interface {
	// -------- Barber --------
	GetBarberByID(
		ctx context.Context,
		id uint,
	) (*models.Barber, error)

	UpdateBarber(
		ctx context.Context,
		b *models.Barber,
	) error

	// -------- Service / addons --------
	GetService(
		ctx context.Context,
		barberID uint,
		serviceID uint,
	) (*models.Service, error)

	ListActiveAddons(
		ctx context.Context,
		barberID uint,
		addonIDs []uint,
	) ([]models.ServiceAddon, error)

	// -------- Client --------
	GetClientByID(
		ctx context.Context,
		id uint,
	) (*models.Client, error)

	// -------- Booking (materialize / idempotency) --------
	FindBookingByPaymentIntent(
		ctx context.Context,
		paymentIntentID string,
	) (*models.Booking, error)

	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Booking (conflict / state change) --------
	HasTimeConflict(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
	) (bool, error)

	GetBookingForBarber(
		ctx context.Context,
		bookingID uint,
		barberID uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		barberID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListBusyIntervals(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
	) ([]Interval, error)
}
