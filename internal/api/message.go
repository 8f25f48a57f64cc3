package api

import (
	"context"
	"errors"
	"net/http"

	"pingup/backend/internal/models"
	"pingup/backend/internal/service"
	apperrors "pingup/backend/pkg/errors"
	"pingup/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Messenger stores and lists direct messages
type Messenger interface {
	Send(ctx context.Context, from string, req models.SendMessageRequest) (*models.Message, error)
	Conversation(ctx context.Context, userID, peerID string) ([]models.Message, error)
}

type MessageHandler struct {
	messages Messenger
}

func NewMessageHandler(m Messenger) *MessageHandler {
	return &MessageHandler{messages: m}
}

// Send handles POST /api/message/send
func (h *MessageHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "to_user_id is required").WithCause(err))
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "Message text or media is required"))
			return
		}
		c.Error(apperrors.NewInternalServerError(apperrors.CodeInternal, "Failed to send message").WithCause(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// Conversation handles POST /api/message/get
func (h *MessageHandler) Conversation(c *gin.Context) {
	var req models.ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "to_user_id is required").WithCause(err))
		return
	}

	msgs, err := h.messages.Conversation(c.Request.Context(), middleware.CurrentUser(c), req.ToUserID)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(apperrors.CodeInternal, "Failed to load messages").WithCause(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}
