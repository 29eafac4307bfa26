// Package responses holds the HTTP response payloads and their builders.
package responses

import (
	"time"

	"campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/identity"
)

// IdentityResponse is the full identity view.
type IdentityResponse struct {
	ID          int64      `json:"id"`
	EntityType  string     `json:"entity_type"`
	EntityID    int64      `json:"entity_id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsOnline    bool       `json:"is_online"`
	IsSuspended bool       `json:"is_suspended"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
	StreakCount int        `json:"streak_count"`
}

// BuildIdentityResponse projects a domain identity.
func BuildIdentityResponse(ident *identity.Identity) *IdentityResponse {
	return &IdentityResponse{
		ID:          ident.ID,
		EntityType:  string(ident.EntityType),
		EntityID:    ident.EntityID,
		DisplayName: ident.DisplayName,
		Email:       ident.Email,
		Role:        string(ident.Role),
		IsOnline:    ident.IsOnline,
		IsSuspended: ident.IsSuspended,
		LastSeen:    ident.LastSeen,
		StreakCount: ident.StreakCount,
	}
}

// ConversationResponse is the conversation view.
type ConversationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Scope     string    `json:"scope,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BuildConversationResponse projects a domain conversation.
func BuildConversationResponse(conv *conversation.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:        conv.ID,
		Type:      string(conv.Type),
		Scope:     string(conv.Scope),
		Name:      conv.Name,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

// BuildConversationList projects a slice of conversations.
func BuildConversationList(convs []conversation.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(convs))
	for i := range convs {
		out = append(out, *BuildConversationResponse(&convs[i]))
	}
	return out
}

// ParticipantResponse is the membership view.
type ParticipantResponse struct {
	ConversationID    int64     `json:"conversation_id"`
	IdentityID        int64     `json:"identity_id"`
	Role              string    `json:"role"`
	AddedByIdentityID *int64    `json:"added_by_identity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// BuildParticipantResponse projects a membership edge.
func BuildParticipantResponse(p *conversation.Participant) *ParticipantResponse {
	return &ParticipantResponse{
		ConversationID:    p.ConversationID,
		IdentityID:        p.IdentityID,
		Role:              string(p.Role),
		AddedByIdentityID: p.AddedByIdentityID,
		CreatedAt:         p.CreatedAt,
	}
}

// BuildParticipantList projects a slice of memberships.
func BuildParticipantList(parts []conversation.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(parts))
	for i := range parts {
		out = append(out, *BuildParticipantResponse(&parts[i]))
	}
	return out
}

// BuildSummaryList projects identity summaries.
func BuildSummaryList(idents []identity.Identity) []identity.Summary {
	out := make([]identity.Summary, 0, len(idents))
	for i := range idents {
		out = append(out, idents[i].Summarize())
	}
	return out
}
