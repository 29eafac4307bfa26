package message

import "context"

// Repository persists messages and their per-recipient status markers.
type Repository interface {
	// Create inserts a message, populating ID and CreatedAt.
	Create(ctx context.Context, msg *Message) error

	// FindByID returns the message or a NOT_FOUND error.
	FindByID(ctx context.Context, id int64) (*Message, error)

	// UpdateContent rewrites the content and marks the message edited.
	UpdateContent(ctx context.Context, id int64, content string) error

	// Delete removes the message and its status markers.
	Delete(ctx context.Context, id int64) error

	// List returns up to limit messages of a conversation in ascending id
	// order; beforeID > 0 pages backwards.
	List(ctx context.Context, conversationID int64, limit int, beforeID int64) ([]Message, error)

	// Search finds messages matching the query, restricted to conversations
	// the identity participates in.
	Search(ctx context.Context, identityID int64, query string, limit int) ([]Message, error)

	// UpsertStatus records the delivery/read marker for one recipient.
	UpsertStatus(ctx context.Context, marker *StatusMarker) error
}
