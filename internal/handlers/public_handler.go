package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/bocm-app/bocm-api/internal/domain/booking"
	"github.com/bocm-app/bocm-api/internal/httperr"
	infraRepo "github.com/bocm-app/bocm-api/internal/infra/repository"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/timezone"
	bookinguc "github.com/bocm-app/bocm-api/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicBarberDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	ShopName    string  `json:"shop_name"`
	Bio         string  `json:"bio"`
	Specialty   string  `json:"specialty"`
	City        string  `json:"city"`
	Address     string  `json:"address"`
	PhotoURL    string  `json:"photo_url"`
	RatingAvg   float64 `json:"rating_avg"`
	RatingCount int     `json:"rating_count"`
}

func publicBarber(b *models.Barber) PublicBarberDTO {
	return PublicBarberDTO{
		ID:          b.ID,
		Name:        b.Name,
		ShopName:    b.ShopName,
		Bio:         b.Bio,
		Specialty:   b.Specialty,
		City:        b.City,
		Address:     b.Address,
		PhotoURL:    b.PhotoURL,
		RatingAvg:   b.RatingAvg,
		RatingCount: b.RatingCount,
	}
}

////////////////////////////////////////////////////////
// BROWSE / SEARCH
////////////////////////////////////////////////////////

func (h *PublicHandler) ListBarbers(c *gin.Context) {
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))
	specialty := strings.TrimSpace(strings.ToLower(c.Query("specialty")))
	city := strings.TrimSpace(strings.ToLower(c.Query("city")))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 50 {
		perPage = 20
	}

	q := h.db.Model(&models.Barber{})

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(shop_name) LIKE ? OR LOWER(bio) LIKE ?",
			like, like, like,
		)
	}
	if specialty != "" {
		q = q.Where("LOWER(specialty) = ?", specialty)
	}
	if city != "" {
		q = q.Where("LOWER(city) = ?", city)
	}

	var total int64
	q.Count(&total)

	var barbers []models.Barber
	if err := q.
		Order("rating_avg DESC, rating_count DESC, id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&barbers).Error; err != nil {
		httperr.Internal(c, "failed_to_list_barbers", "Could not list barbers.")
		return
	}

	list := make([]PublicBarberDTO, 0, len(barbers))
	for i := range barbers {
		list = append(list, publicBarber(&barbers[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"barbers":  list,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

////////////////////////////////////////////////////////
// BARBER DETAIL
////////////////////////////////////////////////////////

func (h *PublicHandler) GetBarber(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	var barber models.Barber
	if err := h.db.First(&barber, uint(id)).Error; err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	var services []models.Service
	h.db.
		Where("barber_id = ? AND active = true", barber.ID).
		Order("id ASC").
		Find(&services)

	var addons []models.ServiceAddon
	h.db.
		Where("barber_id = ? AND active = true", barber.ID).
		Order("id ASC").
		Find(&addons)

	var reviews []models.Review
	h.db.
		Where("barber_id = ?", barber.ID).
		Order("created_at DESC").
		Limit(20).
		Find(&reviews)

	c.JSON(http.StatusOK, gin.H{
		"barber":   publicBarber(&barber),
		"services": services,
		"addons":   addons,
		"reviews":  reviews,
	})
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	var barber models.Barber
	if err := h.db.First(&barber, uint(id)).Error; err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.Where("barber_id = ? AND active = true", barber.ID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"barber":   publicBarber(&barber),
		"services": services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}
	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")

	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "Date and service are required.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service.")
		return
	}

	var barber models.Barber
	if err := h.db.First(&barber, uint(id)).Error; err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	date, err := time.ParseInLocation(
		"2006-01-02",
		dateStr,
		timezone.Location(barber.Timezone),
	)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	repo := infraRepo.NewBookingGormRepository(h.db)
	uc := bookinguc.NewGetAvailability(repo)

	slots, err := uc.Execute(
		c.Request.Context(),
		domain.AvailabilityInput{
			BarberID:  barber.ID,
			ServiceID: uint(serviceID),
			Date:      date,
		},
	)
	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			httperr.BadRequest(c, be.Code, businessMessage(be.Code))
			return
		}
		httperr.Internal(c, "failed_to_get_availability", "Could not compute availability.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}
