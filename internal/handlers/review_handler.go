package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/audit"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type ReviewHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewReviewHandler(db *gorm.DB, auditDispatcher *audit.Dispatcher) *ReviewHandler {
	return &ReviewHandler{db: db, audit: auditDispatcher}
}

// --------- Requests ---------

type CreateReviewRequest struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=1000"`
}

// ======================================================
// CREATE
// ======================================================

// Create posts a review for a completed booking. One review per booking; only
// the client who booked can review it.
func (h *ReviewHandler) Create(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request: "+err.Error())
		return
	}

	var booking models.Booking
	if err := h.db.
		Where("id = ? AND client_id = ?", req.BookingID, clientID).
		First(&booking).Error; err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	if booking.Status != "completed" {
		httperr.BadRequest(c, "invalid_state", "Only completed bookings can be reviewed.")
		return
	}

	review := models.Review{
		BookingID: booking.ID,
		BarberID:  booking.BarberID,
		ClientID:  clientID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return h.refreshRating(tx, booking.BarberID)
	})
	if err != nil {
		var existing models.Review
		if h.db.Where("booking_id = ?", booking.ID).First(&existing).Error == nil {
			httperr.BadRequest(c, "already_reviewed", "This booking was already reviewed.")
			return
		}
		httperr.Internal(c, "failed_to_create_review", "Could not save review.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BarberID: booking.BarberID,
		ActorID:  &clientID,
		Action:   "review_created",
		Entity:   "review",
		EntityID: &review.ID,
		Metadata: map[string]any{"rating": req.Rating},
	})

	c.JSON(http.StatusCreated, review)
}

// refreshRating recomputes the barber's cached average from the reviews table.
func (h *ReviewHandler) refreshRating(tx *gorm.DB, barberID uint) error {
	type agg struct {
		Avg   float64
		Count int
	}
	var a agg
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("barber_id = ?", barberID).
		Scan(&a).Error; err != nil {
		return err
	}

	return tx.Model(&models.Barber{}).
		Where("id = ?", barberID).
		Updates(map[string]any{
			"rating_avg":   a.Avg,
			"rating_count": a.Count,
		}).Error
}

// ======================================================
// LIST (PUBLIC)
// ======================================================

func (h *ReviewHandler) ListForBarber(c *gin.Context) {
	barberID := c.Param("id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := 20

	var reviews []models.Review
	if err := h.db.
		Preload("Client").
		Where("barber_id = ?", barberID).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reviews).Error; err != nil {
		httperr.Internal(c, "failed_to_list_reviews", "Could not list reviews.")
		return
	}

	c.JSON(http.StatusOK, reviews)
}
