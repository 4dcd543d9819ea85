package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/httpresp"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
)

type AddonHandler struct {
	db *gorm.DB
}

func NewAddonHandler(db *gorm.DB) *AddonHandler {
	return &AddonHandler{db: db}
}

// --------- Requests ---------

type CreateAddonRequest struct {
	Name       string `json:"name" binding:"required"`
	PriceCents int64  `json:"price_cents" binding:"required,min=1"`
}

type UpdateAddonRequest struct {
	Name       *string `json:"name,omitempty"`
	PriceCents *int64  `json:"price_cents,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *AddonHandler) List(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var addons []models.ServiceAddon
	if err := h.db.
		Where("barber_id = ?", barberID).
		Order("id ASC").
		Find(&addons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_addons"})
		return
	}

	httpresp.List(c, addons)
}

func (h *AddonHandler) Create(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateAddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	addon := models.ServiceAddon{
		BarberID:   barberID,
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Active:     true,
	}

	if err := h.db.Create(&addon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_addon"})
		return
	}

	c.JSON(http.StatusCreated, addon)
}

func (h *AddonHandler) Update(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var addon models.ServiceAddon
	if err := h.db.
		Where("id = ? AND barber_id = ?", id, barberID).
		First(&addon).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "addon_not_found"})
		return
	}

	var req UpdateAddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if req.Name != nil {
		addon.Name = *req.Name
	}
	if req.PriceCents != nil {
		addon.PriceCents = *req.PriceCents
	}
	if req.Active != nil {
		addon.Active = *req.Active
	}

	if err := h.db.Save(&addon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_addon"})
		return
	}

	c.JSON(http.StatusOK, addon)
}
