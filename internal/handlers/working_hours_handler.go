package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
)

type WorkingHoursHandler struct {
	db *gorm.DB
}

func NewWorkingHoursHandler(db *gorm.DB) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db}
}

type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required"`
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var hours []models.WorkingHours
	if err := h.db.
		Where("barber_id = ?", barberID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		httperr.Internal(c, "failed_to_get_working_hours", "Could not load working hours.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

// Update replaces the full weekly schedule in one shot. Partial edits are not
// supported; clients always send all seven days.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request: "+err.Error())
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}

		var toCreate []models.WorkingHours
		for _, d := range req.Days {
			toCreate = append(toCreate, models.WorkingHours{
				BarberID:   barberID,
				Weekday:    d.Weekday,
				Active:     d.Active,
				StartTime:  d.StartTime,
				EndTime:    d.EndTime,
				LunchStart: d.LunchStart,
				LunchEnd:   d.LunchEnd,
			})
		}

		if len(toCreate) > 0 {
			return tx.Create(&toCreate).Error
		}
		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_working_hours", "Could not save working hours.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
