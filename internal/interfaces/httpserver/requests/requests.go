// Package requests holds the HTTP request payloads.
package requests

import "encoding/json"

// ResolveIdentityRequest asks for the chat identity of an academic record,
// provisioning it when absent.
type ResolveIdentityRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   int64  `json:"entity_id" binding:"required"`
}

// CreateDirectRequest opens (or reuses) a direct conversation. TargetID is a
// wire identity id and may be a negative virtual encoding.
type CreateDirectRequest struct {
	TargetID int64 `json:"target_id" binding:"required"`
}

// CreateGroupRequest creates a private group. ParticipantIDs are wire
// identity ids, virtual encodings included.
type CreateGroupRequest struct {
	Name           string  `json:"name" binding:"required"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

// AddParticipantRequest adds one identity to a conversation.
type AddParticipantRequest struct {
	IdentityID int64 `json:"identity_id" binding:"required"`
}

// ChangeRoleRequest changes a participant's conversation role.
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateMessageRequest posts a message to a conversation.
type CreateMessageRequest struct {
	Content  string          `json:"content" binding:"required"`
	Type     string          `json:"type"`
	Metadata json.RawMessage `json:"metadata"`
}

// EditMessageRequest rewrites a message's content within the edit window.
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
