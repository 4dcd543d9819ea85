package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/dto"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/timezone"
	bookinguc "github.com/bocm-app/bocm-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db       *gorm.DB
	checkIn  *bookinguc.CheckInBooking
	cancel   *bookinguc.CancelBooking
	complete *bookinguc.CompleteBooking
	noShow   *bookinguc.MarkNoShow
}

func NewBookingHandler(
	db *gorm.DB,
	checkIn *bookinguc.CheckInBooking,
	cancel *bookinguc.CancelBooking,
	complete *bookinguc.CompleteBooking,
	noShow *bookinguc.MarkNoShow,
) *BookingHandler {
	return &BookingHandler{
		db:       db,
		checkIn:  checkIn,
		cancel:   cancel,
		complete: complete,
		noShow:   noShow,
	}
}

// ======================================================
// LIST (BARBER)
// ======================================================

// ListByDate serves one day (`?date=`) or an explicit range (`?from=&to=`),
// both interpreted in the barber's timezone.
func (h *BookingHandler) ListByDate(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var barber models.Barber
	if err := h.db.First(&barber, barberID).Error; err != nil {
		httperr.Internal(c, "barber_not_found", "Account not found.")
		return
	}
	loc := timezone.Location(barber.Timezone)

	if fromStr, toStr := c.Query("from"), c.Query("to"); fromStr != "" && toStr != "" {
		from, err1 := time.ParseInLocation("2006-01-02", fromStr, loc)
		to, err2 := time.ParseInLocation("2006-01-02", toStr, loc)
		if err1 != nil || err2 != nil || to.Before(from) {
			httperr.BadRequest(c, "invalid_date", "Invalid date range.")
			return
		}
		h.listRange(c, barberID, from, to.Add(24*time.Hour))
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)

	h.listRange(c, barberID, start, end)
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	yearStr := c.Query("year")
	monthStr := c.Query("month")
	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Year and month are required.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	var barber models.Barber
	if err := h.db.First(&barber, barberID).Error; err != nil {
		httperr.Internal(c, "barber_not_found", "Account not found.")
		return
	}

	loc := timezone.Location(barber.Timezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	h.listRange(c, barberID, start, end)
}

func (h *BookingHandler) listRange(c *gin.Context, barberID uint, start, end time.Time) {
	var bookings []models.Booking
	h.db.
		Preload("Client").
		Preload("Service").
		Where(
			"barber_id = ? AND start_time >= ? AND start_time < ?",
			barberID, start, end,
		).
		Order("start_time ASC").
		Find(&bookings)

	list := make([]dto.BookingListDTO, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		list = append(list, dto.BookingListDTO{
			ID:            b.ID,
			Reference:     b.Reference,
			StartTime:     b.StartTime,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			ClientName:    bookingClientName(b),
			ServiceName:   b.Service.Name,
			PriceCents:    b.PriceCents,
		})
	}

	c.JSON(200, list)
}

// ======================================================
// DETAIL (BARBER)
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var b models.Booking
	if err := h.db.
		Preload("Client").
		Preload("Service").
		Preload("Addons").
		Where("id = ? AND barber_id = ?", id, barberID).
		First(&b).Error; err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	c.JSON(200, bookingResponse(&b))
}

// ======================================================
// LIST (CLIENT)
// ======================================================

func (h *BookingHandler) ListForClient(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	var bookings []models.Booking
	h.db.
		Preload("Barber").
		Preload("Service").
		Preload("Addons").
		Where("client_id = ?", clientID).
		Order("start_time DESC").
		Limit(100).
		Find(&bookings)

	c.JSON(200, bookings)
}

// ======================================================
// TRANSITIONS (BARBER)
// ======================================================

func (h *BookingHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.checkIn.Execute)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancel.Execute)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete.Execute)
}

func (h *BookingHandler) NoShow(c *gin.Context) {
	h.transition(c, h.noShow.Execute)
}

func (h *BookingHandler) transition(
	c *gin.Context,
	exec func(ctx context.Context, barberID, bookingID uint) (*models.Booking, error),
) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid booking id.")
		return
	}

	b, err := exec(c.Request.Context(), barberID, uint(id64))
	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			if be.Code == "booking_not_found" {
				httperr.NotFound(c, be.Code, businessMessage(be.Code))
				return
			}
			httperr.BadRequest(c, be.Code, businessMessage(be.Code))
			return
		}
		httperr.Internal(c, "failed_to_update_booking", "Could not update booking.")
		return
	}

	c.JSON(200, bookingResponse(b))
}
