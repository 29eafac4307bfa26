// Package handlers holds the gin HTTP handlers.
package handlers

import (
	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/autogroup"
	"campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/message"
)

// Provider wires HTTP handlers.
type Provider struct {
	Identity     *IdentityHandler
	Conversation *ConversationHandler
	Message      *MessageHandler
}

func NewProvider(resolver identity.Resolver, syncer *autogroup.Syncer, store *conversation.Store, messages *message.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Identity:     NewIdentityHandler(resolver, syncer, log),
		Conversation: NewConversationHandler(store, log),
		Message:      NewMessageHandler(messages, log),
	}
}
