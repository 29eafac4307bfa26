package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/infrastructure/auth"
	"campus-chat/chat-api/internal/interfaces/httpserver/requests"
	"campus-chat/chat-api/internal/interfaces/httpserver/responses"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// ConversationHandler exposes conversation and participant lifecycle.
type ConversationHandler struct {
	store *conversation.Store
	log   zerolog.Logger
}

func NewConversationHandler(store *conversation.Store, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		store: store,
		log:   log.With().Str("component", "conversation-handler").Logger(),
	}
}

// CreateDirect opens a direct conversation with the target, reusing the
// existing one for the pair when present.
func (h *ConversationHandler) CreateDirect(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "missing principal")
		return
	}
	var req requests.CreateDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}
	ref, err := identity.ParseRef(req.TargetID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	conv, err := h.store.CreateDirect(c.Request.Context(), principal, ref)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildConversationResponse(conv))
}

// CreateGroup creates a private group with the caller as admin.
func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "missing principal")
		return
	}
	var req requests.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}
	refs := make([]identity.Ref, 0, len(req.ParticipantIDs))
	for _, wireID := range req.ParticipantIDs {
		ref, err := identity.ParseRef(wireID)
		if err != nil {
			platformerrors.WriteError(c, err, h.log)
			return
		}
		refs = append(refs, ref)
	}
	conv, err := h.store.CreateGroup(c.Request.Context(), principal, req.Name, refs)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, responses.BuildConversationResponse(conv))
}

// List returns the caller's conversations, most recently active first.
func (h *ConversationHandler) List(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "missing principal")
		return
	}
	convs, err := h.store.ListForIdentity(c.Request.Context(), principal.ID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": responses.BuildConversationList(convs)})
}

// Get returns one conversation the caller participates in.
func (h *ConversationHandler) Get(c *gin.Context) {
	principal, conversationID, ok := h.principalAndID(c)
	if !ok {
		return
	}
	if !h.requireMembership(c, conversationID, principal.ID) {
		return
	}
	conv, err := h.store.Get(c.Request.Context(), conversationID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildConversationResponse(conv))
}

// Participants lists the conversation's membership.
func (h *ConversationHandler) Participants(c *gin.Context) {
	principal, conversationID, ok := h.principalAndID(c)
	if !ok {
		return
	}
	if !h.requireMembership(c, conversationID, principal.ID) {
		return
	}
	parts, err := h.store.Participants(c.Request.Context(), conversationID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": responses.BuildParticipantList(parts)})
}

// AddParticipant adds one identity to the conversation.
func (h *ConversationHandler) AddParticipant(c *gin.Context) {
	principal, conversationID, ok := h.principalAndID(c)
	if !ok {
		return
	}
	var req requests.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}
	ref, err := identity.ParseRef(req.IdentityID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	part, err := h.store.AddParticipant(c.Request.Context(), principal, conversationID, ref)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildParticipantResponse(part))
}

// RemoveParticipant removes the target, or the caller themselves when the
// target id matches the principal.
func (h *ConversationHandler) RemoveParticipant(c *gin.Context) {
	principal, conversationID, ok := h.principalAndID(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseInt(c.Param("identityId"), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid identity id")
		return
	}
	if err := h.store.RemoveParticipant(c.Request.Context(), principal, conversationID, targetID); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// ChangeRole changes a participant's role within the conversation.
func (h *ConversationHandler) ChangeRole(c *gin.Context) {
	principal, conversationID, ok := h.principalAndID(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseInt(c.Param("identityId"), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid identity id")
		return
	}
	var req requests.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}
	newRole := permission.ParticipantRole(req.Role)
	if err := h.store.ChangeRole(c.Request.Context(), principal, conversationID, targetID, newRole); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *ConversationHandler) principalAndID(c *gin.Context) (identity.Principal, int64, bool) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "missing principal")
		return identity.Principal{}, 0, false
	}
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid conversation id")
		return identity.Principal{}, 0, false
	}
	return principal, conversationID, true
}

func (h *ConversationHandler) requireMembership(c *gin.Context, conversationID, identityID int64) bool {
	member, err := h.store.Membership(c.Request.Context(), conversationID, identityID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return false
	}
	if member == nil {
		platformerrors.WriteError(c, platformerrors.NewForbidden("not a participant of this conversation"), h.log)
		return false
	}
	return true
}
