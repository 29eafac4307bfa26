// Package v1 registers the versioned route surface.
package v1

import (
	"github.com/gin-gonic/gin"

	"campus-chat/chat-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under the /v1 prefix. The router is
// expected to already carry the auth middleware.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	group.POST("/identities/resolve", r.handlers.Identity.Resolve)
	group.GET("/identities/me", r.handlers.Identity.Me)
	group.GET("/identities/search", r.handlers.Identity.Search)
	group.GET("/identities/:id", r.handlers.Identity.Get)
	group.POST("/identities/sync", r.handlers.Identity.Sync)

	group.POST("/conversations/direct", r.handlers.Conversation.CreateDirect)
	group.POST("/conversations/group", r.handlers.Conversation.CreateGroup)
	group.GET("/conversations", r.handlers.Conversation.List)
	group.GET("/conversations/:id", r.handlers.Conversation.Get)
	group.GET("/conversations/:id/participants", r.handlers.Conversation.Participants)
	group.POST("/conversations/:id/participants", r.handlers.Conversation.AddParticipant)
	group.DELETE("/conversations/:id/participants/:identityId", r.handlers.Conversation.RemoveParticipant)
	group.PATCH("/conversations/:id/participants/:identityId", r.handlers.Conversation.ChangeRole)

	group.POST("/conversations/:id/messages", r.handlers.Message.Create)
	group.GET("/conversations/:id/messages", r.handlers.Message.List)
	group.POST("/conversations/:id/messages/:messageId/read", r.handlers.Message.MarkRead)
	group.GET("/messages/search", r.handlers.Message.Search)
	group.PATCH("/messages/:id", r.handlers.Message.Edit)
	group.DELETE("/messages/:id", r.handlers.Message.Delete)
}
