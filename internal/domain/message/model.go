// Package message owns message creation, the bounded edit window and the
// multi-tier delete authorization.
package message

import (
	"encoding/json"
	"time"

	"campus-chat/chat-api/internal/domain/identity"
)

// Message is a persisted chat message. Immutable except for Content/IsEdited
// through the edit path.
type Message struct {
	ID               int64           `json:"id"`
	ConversationID   int64           `json:"conversation_id"`
	SenderIdentityID int64           `json:"sender_identity_id"`
	Content          string          `json:"content"`
	Type             string          `json:"type"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
	IsEdited         bool            `json:"is_edited"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Status values for per-recipient delivery markers.
const (
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// StatusMarker is the per-recipient delivery/read marker, upserted as the
// recipient's client acknowledges.
type StatusMarker struct {
	MessageID  int64
	IdentityID int64
	Status     string
}

// Hydrated is a message together with its sender summary, the shape shipped
// in fan-out events and list responses.
type Hydrated struct {
	Message
	Sender identity.Summary `json:"sender"`
}
