package conversation

import (
	"context"
	"time"

	"campus-chat/chat-api/internal/domain/permission"
)

// Repository persists conversations. Uniqueness (direct pair, standing group
// key) is enforced by database constraints; a duplicate insert yields a
// CONFLICT platform error so callers can converge by re-reading.
type Repository interface {
	// Create inserts a conversation, populating its ID. dedupKey is the
	// DirectKey or GroupKey, or empty for private groups.
	Create(ctx context.Context, conv *Conversation, dedupKey string) error

	// FindByID returns the conversation or a NOT_FOUND error.
	FindByID(ctx context.Context, id int64) (*Conversation, error)

	// FindByKey returns the conversation with the given dedup key, or nil
	// when none exists.
	FindByKey(ctx context.Context, key string) (*Conversation, error)

	// Touch bumps updated_at; called when a message lands.
	Touch(ctx context.Context, id int64, at time.Time) error

	// ListByIdentity returns the conversations the identity participates in,
	// most recently updated first.
	ListByIdentity(ctx context.Context, identityID int64) ([]Conversation, error)
}

// ParticipantRepository persists membership edges. (conversation_id,
// identity_id) is unique; duplicate adds yield CONFLICT.
type ParticipantRepository interface {
	Add(ctx context.Context, p *Participant) error

	// Find returns the membership edge, or nil when the identity is not a
	// participant.
	Find(ctx context.Context, conversationID, identityID int64) (*Participant, error)

	ListByConversation(ctx context.Context, conversationID int64) ([]Participant, error)

	// IdentityIDs returns the participant identity ids for fan-out.
	IdentityIDs(ctx context.Context, conversationID int64) ([]int64, error)

	Remove(ctx context.Context, conversationID, identityID int64) error

	UpdateRole(ctx context.Context, conversationID, identityID int64, role permission.ParticipantRole) error
}
