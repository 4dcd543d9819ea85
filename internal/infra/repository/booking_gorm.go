package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "github.com/bocm-app/bocm-api/internal/domain/booking"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Barber
// --------------------------------------------------

func (r *BookingGormRepository) GetBarberByID(
	ctx context.Context,
	id uint,
) (*models.Barber, error) {

	var barber models.Barber
	if err := r.db.WithContext(ctx).First(&barber, id).Error; err != nil {
		return nil, err
	}
	return &barber, nil
}

func (r *BookingGormRepository) UpdateBarber(
	ctx context.Context,
	b *models.Barber,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// --------------------------------------------------
// Service / addons
// --------------------------------------------------

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	barberID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barber_id = ? AND active = true", serviceID, barberID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *BookingGormRepository) ListActiveAddons(
	ctx context.Context,
	barberID uint,
	addonIDs []uint,
) ([]models.ServiceAddon, error) {

	if len(addonIDs) == 0 {
		return nil, nil
	}

	var addons []models.ServiceAddon
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND active = true AND id IN ?", barberID, addonIDs).
		Find(&addons).Error; err != nil {
		return nil, err
	}
	return addons, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *BookingGormRepository) GetClientByID(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// --------------------------------------------------
// Booking (materialize / idempotency)
// --------------------------------------------------

func (r *BookingGormRepository) FindBookingByPaymentIntent(
	ctx context.Context,
	paymentIntentID string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Addons").
		Where("payment_intent_id = ?", paymentIntentID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBooking inserts the booking and its addon snapshots in one
// transaction. The unique index on payment_intent_id is the real guard
// against the webhook/poll race; a losing insert surfaces as a business error
// the materializer resolves by returning the winner's row.
func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {

	err := r.db.WithContext(ctx).Create(b).Error
	if err != nil && isUniqueViolation(err) {
		return httperr.ErrBusiness("duplicate_payment_intent")
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// --------------------------------------------------
// Booking (conflict / state change)
// --------------------------------------------------

// HasTimeConflict is an advisory pre-check; no lock survives it. The unique
// index on payment_intent_id is what actually serializes concurrent
// materializations for the same payment.
func (r *BookingGormRepository) HasTimeConflict(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Joins("JOIN services ON services.id = bookings.service_id").
		Where(
			"bookings.barber_id = ? AND bookings.status = 'confirmed' AND bookings.start_time < ? AND bookings.start_time + make_interval(mins => services.duration_min) > ?",
			barberID,
			end,
			start,
		).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *BookingGormRepository) GetBookingForBarber(
	ctx context.Context,
	bookingID uint,
	barberID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barber_id = ?", bookingID, barberID).
		First(&b).Error; err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *BookingGormRepository) GetWorkingHours(
	ctx context.Context,
	barberID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND weekday = ?", barberID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *BookingGormRepository) ListBusyIntervals(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]domain.Interval, error) {

	var rows []struct {
		StartTime   time.Time
		DurationMin int
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("bookings.start_time, services.duration_min").
		Joins("JOIN services ON services.id = bookings.service_id").
		Where(
			"bookings.barber_id = ? AND bookings.status = 'confirmed' AND bookings.start_time >= ? AND bookings.start_time < ?",
			barberID, start, end,
		).
		Order("bookings.start_time ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	intervals := make([]domain.Interval, 0, len(rows))
	for _, row := range rows {
		intervals = append(intervals, domain.Interval{
			Start: row.StartTime,
			End:   row.StartTime.Add(time.Duration(row.DurationMin) * time.Minute),
		})
	}
	return intervals, nil
}
