package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.GetString(middleware.ContextUserRole)

	switch role {
	case middleware.RoleBarber:
		var barber models.Barber
		if err := h.db.First(&barber, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "account_not_found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": role, "barber": barber})

	case middleware.RoleClient:
		var client models.Client
		if err := h.db.First(&client, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "account_not_found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": role, "client": client})

	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_role"})
	}
}
