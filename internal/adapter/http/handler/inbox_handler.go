package handler

import (
	"zenfi-wallet/internal/adapter/http/dto"
	"zenfi-wallet/internal/adapter/http/middleware"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/pkg/apperror"
	"zenfi-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InboxHandler serves notifications and community messages.
type InboxHandler struct {
	notifSvc   ports.NotificationService
	messageSvc ports.MessageService
}

// NewInboxHandler creates a new InboxHandler.
func NewInboxHandler(notifSvc ports.NotificationService, messageSvc ports.MessageService) *InboxHandler {
	return &InboxHandler{notifSvc: notifSvc, messageSvc: messageSvc}
}

// ListNotifications handles GET /api/v1/notifications.
func (h *InboxHandler) ListNotifications(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	notifications, err := h.notifSvc.ListForProfile(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, dto.FromNotification(&notifications[i]))
	}
	response.OK(c, out)
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read.
func (h *InboxHandler) MarkNotificationRead(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid notification id"))
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), id, profileID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"read": true})
}

// ListMessages handles GET /api/v1/messages.
func (h *InboxHandler) ListMessages(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	messages, err := h.messageSvc.ListVisible(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, dto.FromMessage(&messages[i]))
	}
	response.OK(c, out)
}
