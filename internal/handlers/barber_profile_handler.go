package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/media"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type BarberProfileHandler struct {
	db       *gorm.DB
	uploader *media.Uploader
}

func NewBarberProfileHandler(db *gorm.DB, uploader *media.Uploader) *BarberProfileHandler {
	return &BarberProfileHandler{db: db, uploader: uploader}
}

// --------- Requests ---------

type UpdateBarberProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	ShopName  *string `json:"shop_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Specialty *string `json:"specialty,omitempty"`
	City      *string `json:"city,omitempty"`
	Address   *string `json:"address,omitempty"`
	Timezone  *string `json:"timezone,omitempty"`
}

// --------- Handlers ---------

func (h *BarberProfileHandler) Get(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var barber models.Barber
	if err := h.db.First(&barber, barberID).Error; err != nil {
		httperr.Internal(c, "barber_not_found", "Account not found.")
		return
	}

	c.JSON(http.StatusOK, barber)
}

func (h *BarberProfileHandler) Update(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var req UpdateBarberProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid profile data.")
		return
	}

	var barber models.Barber
	if err := h.db.First(&barber, barberID).Error; err != nil {
		httperr.Internal(c, "barber_not_found", "Account not found.")
		return
	}

	if req.Name != nil {
		barber.Name = *req.Name
	}
	if req.Phone != nil {
		barber.Phone = *req.Phone
	}
	if req.ShopName != nil {
		barber.ShopName = *req.ShopName
	}
	if req.Bio != nil {
		barber.Bio = *req.Bio
	}
	if req.Specialty != nil {
		barber.Specialty = *req.Specialty
	}
	if req.City != nil {
		barber.City = *req.City
	}
	if req.Address != nil {
		barber.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		barber.Timezone = *req.Timezone
	}

	if err := h.db.Save(&barber).Error; err != nil {
		httperr.Internal(c, "failed_to_update_profile", "Could not save profile.")
		return
	}

	c.JSON(http.StatusOK, barber)
}

// UploadPhoto receives a multipart "photo" file, converts it to webp and
// stores it in the media bucket.
func (h *BarberProfileHandler) UploadPhoto(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	file, err := c.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, "missing_photo", "A photo file is required.")
		return
	}
	if file.Size > 10<<20 {
		httperr.BadRequest(c, "photo_too_large", "Photo must be under 10MB.")
		return
	}

	src, err := file.Open()
	if err != nil {
		httperr.Internal(c, "failed_to_read_photo", "Could not read upload.")
		return
	}
	defer src.Close()

	url, err := h.uploader.UploadProfilePhoto(
		c.Request.Context(),
		src,
		fmt.Sprintf("barbers/%d", barberID),
	)
	if err != nil {
		httperr.Internal(c, "failed_to_upload_photo", "Could not store photo.")
		return
	}

	if err := h.db.Model(&models.Barber{}).
		Where("id = ?", barberID).
		Update("photo_url", url).Error; err != nil {
		httperr.Internal(c, "failed_to_update_profile", "Could not save photo URL.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
