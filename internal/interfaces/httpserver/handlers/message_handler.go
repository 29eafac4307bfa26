package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/message"
	"campus-chat/chat-api/internal/infrastructure/auth"
	"campus-chat/chat-api/internal/infrastructure/metrics"
	"campus-chat/chat-api/internal/interfaces/httpserver/requests"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// MessageHandler exposes the message lifecycle.
type MessageHandler struct {
	service *message.Service
	log     zerolog.Logger
}

func NewMessageHandler(service *message.Service, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		log:     log.With().Str("component", "message-handler").Logger(),
	}
}

// Create posts a message to a conversation and fans it out to every current
// participant.
func (h *MessageHandler) Create(c *gin.Context) {
	principal, conversationID, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req requests.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}
	hydrated, err := h.service.Create(c.Request.Context(), principal, conversationID, req.Content, req.Type, req.Metadata)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	metrics.MessagesCreated.Inc()
	c.JSON(http.StatusCreated, hydrated)
}

// List returns messages of a conversation in ascending order of creation,
// optionally paging backwards with before_id.
func (h *MessageHandler) List(c *gin.Context) {
	principal, conversationID, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	beforeID, _ := strconv.ParseInt(c.Query("before_id"), 10, 64)
	msgs, err := h.service.List(c.Request.Context(), principal, conversationID, limit, beforeID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Edit rewrites a message's content within the edit window.
func (h *MessageHandler) Edit(c *gin.Context) {
	principal, messageID, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req requests.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}
	msg, err := h.service.Edit(c.Request.Context(), principal, messageID, req.Content)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Delete removes a message under the tiered authorization rules.
func (h *MessageHandler) Delete(c *gin.Context) {
	principal, messageID, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), principal, messageID); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Search finds messages across the caller's conversations.
func (h *MessageHandler) Search(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "missing principal")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	msgs, err := h.service.Search(c.Request.Context(), principal, c.Query("q"), limit)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkRead upserts the caller's read marker for a message and notifies the
// other participants.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	principal, conversationID, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid message id")
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), principal, conversationID, messageID); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *MessageHandler) principalAndID(c *gin.Context, param string) (identity.Principal, int64, bool) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "missing principal")
		return identity.Principal{}, 0, false
	}
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid id")
		return identity.Principal{}, 0, false
	}
	return principal, id, true
}
