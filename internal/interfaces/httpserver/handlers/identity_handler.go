package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/autogroup"
	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/infrastructure/auth"
	"campus-chat/chat-api/internal/interfaces/httpserver/requests"
	"campus-chat/chat-api/internal/interfaces/httpserver/responses"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// IdentityHandler exposes identity resolution, lookup and group sync.
type IdentityHandler struct {
	resolver identity.Resolver
	syncer   *autogroup.Syncer
	log      zerolog.Logger
}

func NewIdentityHandler(resolver identity.Resolver, syncer *autogroup.Syncer, log zerolog.Logger) *IdentityHandler {
	return &IdentityHandler{
		resolver: resolver,
		syncer:   syncer,
		log:      log.With().Str("component", "identity-handler").Logger(),
	}
}

// Resolve provisions (or returns) the identity backing an academic record.
func (h *IdentityHandler) Resolve(c *gin.Context) {
	var req requests.ResolveIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	ident, err := h.resolver.Resolve(c.Request.Context(), identity.EntityType(req.EntityType), req.EntityID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildIdentityResponse(ident))
}

// Me returns the caller's identity.
func (h *IdentityHandler) Me(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "missing principal")
		return
	}
	ident, err := h.resolver.Get(c.Request.Context(), principal.ID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildIdentityResponse(ident))
}

// Get returns one identity by wire id, materializing virtual encodings.
func (h *IdentityHandler) Get(c *gin.Context) {
	wireID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid identity id")
		return
	}
	ref, refErr := identity.ParseRef(wireID)
	if refErr != nil {
		platformerrors.WriteError(c, refErr, h.log)
		return
	}
	ident, resErr := h.resolver.ResolveRef(c.Request.Context(), ref)
	if resErr != nil {
		platformerrors.WriteError(c, resErr, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildIdentityResponse(ident))
}

// Search finds identities by display name or email.
func (h *IdentityHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	idents, err := h.resolver.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"identities": responses.BuildSummaryList(idents)})
}

// Sync reconciles the caller's standing group memberships against their
// academic attributes. Idempotent.
func (h *IdentityHandler) Sync(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "missing principal")
		return
	}
	ident, err := h.resolver.Get(c.Request.Context(), principal.ID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	if err := h.syncer.Sync(c.Request.Context(), ident); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "synced"})
}
