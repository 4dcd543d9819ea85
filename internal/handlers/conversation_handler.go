package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type ConversationHandler struct {
	db *gorm.DB
}

func NewConversationHandler(db *gorm.DB) *ConversationHandler {
	return &ConversationHandler{db: db}
}

// --------- Requests ---------

type StartConversationRequest struct {
	BarberID uint `json:"barber_id" binding:"required"`
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

// ======================================================
// LIST
// ======================================================

func (h *ConversationHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	q := h.db.Preload("Barber").Preload("Client")
	if role == middleware.RoleBarber {
		q = q.Where("barber_id = ?", userID)
	} else {
		q = q.Where("client_id = ?", userID)
	}

	var conversations []models.Conversation
	if err := q.
		Order("last_message_at DESC NULLS LAST").
		Limit(100).
		Find(&conversations).Error; err != nil {
		httperr.Internal(c, "failed_to_list_conversations", "Could not list conversations.")
		return
	}

	// Unread counts for the caller's side of each conversation.
	otherRole := middleware.RoleClient
	if role == middleware.RoleClient {
		otherRole = middleware.RoleBarber
	}

	type row struct {
		ConversationID uint
		Count          int64
	}
	ids := make([]uint, 0, len(conversations))
	for _, conv := range conversations {
		ids = append(ids, conv.ID)
	}

	unread := map[uint]int64{}
	if len(ids) > 0 {
		var rows []row
		h.db.Model(&models.Message{}).
			Select("conversation_id, COUNT(*) AS count").
			Where("conversation_id IN ? AND sender_role = ? AND read_at IS NULL", ids, otherRole).
			Group("conversation_id").
			Scan(&rows)
		for _, r := range rows {
			unread[r.ConversationID] = r.Count
		}
	}

	out := make([]gin.H, 0, len(conversations))
	for i := range conversations {
		conv := &conversations[i]
		out = append(out, gin.H{
			"conversation": conv,
			"unread":       unread[conv.ID],
		})
	}

	c.JSON(http.StatusOK, out)
}

// ======================================================
// START
// ======================================================

// Start opens (or returns the existing) conversation between the calling
// client and a barber. Conversations are one per pair.
func (h *ConversationHandler) Start(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	var barber models.Barber
	if err := h.db.First(&barber, req.BarberID).Error; err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	var conv models.Conversation
	err := h.db.
		Where("barber_id = ? AND client_id = ?", req.BarberID, clientID).
		First(&conv).Error
	if err == nil {
		c.JSON(http.StatusOK, conv)
		return
	}

	conv = models.Conversation{
		BarberID: req.BarberID,
		ClientID: clientID,
	}
	if err := h.db.Create(&conv).Error; err != nil {
		// Concurrent create of the same pair; return the winner.
		if h.db.Where("barber_id = ? AND client_id = ?", req.BarberID, clientID).First(&conv).Error == nil {
			c.JSON(http.StatusOK, conv)
			return
		}
		httperr.Internal(c, "failed_to_start_conversation", "Could not start conversation.")
		return
	}

	c.JSON(http.StatusCreated, conv)
}

// ======================================================
// MESSAGES
// ======================================================

func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conv, role, ok := h.load(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := h.db.
		Where("conversation_id = ?", conv.ID).
		Order("created_at ASC").
		Limit(200).
		Find(&messages).Error; err != nil {
		httperr.Internal(c, "failed_to_list_messages", "Could not list messages.")
		return
	}

	// Reading the thread marks the other side's messages as read.
	otherRole := middleware.RoleClient
	if role == middleware.RoleClient {
		otherRole = middleware.RoleBarber
	}
	now := timezone.Now()
	h.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_role = ? AND read_at IS NULL", conv.ID, otherRole).
		Update("read_at", now)

	c.JSON(http.StatusOK, messages)
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	conv, role, ok := h.load(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Message body is required.")
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		httperr.BadRequest(c, "invalid_request", "Message body is required.")
		return
	}

	msg := models.Message{
		ConversationID: conv.ID,
		SenderRole:     role,
		Body:           body,
	}
	if err := h.db.Create(&msg).Error; err != nil {
		httperr.Internal(c, "failed_to_send_message", "Could not send message.")
		return
	}

	now := timezone.Now()
	h.db.Model(conv).Update("last_message_at", now)

	c.JSON(http.StatusCreated, msg)
}

// load fetches the conversation from the :id param and verifies the caller is
// one of its two participants.
func (h *ConversationHandler) load(c *gin.Context) (*models.Conversation, string, bool) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.NotFound(c, "conversation_not_found", "Conversation not found.")
		return nil, "", false
	}

	var conv models.Conversation
	if err := h.db.First(&conv, uint(id)).Error; err != nil {
		httperr.NotFound(c, "conversation_not_found", "Conversation not found.")
		return nil, "", false
	}

	if role == middleware.RoleBarber && conv.BarberID != userID {
		httperr.Forbidden(c, "forbidden", "Not your conversation.")
		return nil, "", false
	}
	if role == middleware.RoleClient && conv.ClientID != userID {
		httperr.Forbidden(c, "forbidden", "Not your conversation.")
		return nil, "", false
	}

	return &conv, role, true
}
