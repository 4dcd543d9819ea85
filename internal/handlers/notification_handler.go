package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/timezone"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	var notifications []models.Notification
	if err := h.db.
		Where("recipient_role = ? AND recipient_id = ?", role, userID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error; err != nil {
		httperr.Internal(c, "failed_to_list_notifications", "Could not list notifications.")
		return
	}

	var unread int64
	h.db.Model(&models.Notification{}).
		Where("recipient_role = ? AND recipient_id = ? AND read_at IS NULL", role, userID).
		Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread":        unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)
	id := c.Param("id")

	now := timezone.Now()
	result := h.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_role = ? AND recipient_id = ?", id, role, userID).
		Update("read_at", now)

	if result.Error != nil {
		httperr.Internal(c, "failed_to_mark_read", "Could not update notification.")
		return
	}
	if result.RowsAffected == 0 {
		httperr.NotFound(c, "notification_not_found", "Notification not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	now := timezone.Now()
	if err := h.db.Model(&models.Notification{}).
		Where("recipient_role = ? AND recipient_id = ? AND read_at IS NULL", role, userID).
		Update("read_at", now).Error; err != nil {
		httperr.Internal(c, "failed_to_mark_read", "Could not update notifications.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
