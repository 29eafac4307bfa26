package identity

import (
	"context"
	"time"

	"campus-chat/chat-api/internal/domain/permission"
)

// Repository persists chat identities. Implementations signal a duplicate
// insert with a CONFLICT platform error so the resolver can converge by
// re-reading.
type Repository interface {
	// FindByEntity returns the identity for a record reference, or nil when
	// none exists.
	FindByEntity(ctx context.Context, entityType EntityType, entityID int64) (*Identity, error)

	// FindByID returns the identity with the given row id, or a NOT_FOUND
	// error.
	FindByID(ctx context.Context, id int64) (*Identity, error)

	// FindByIDs returns the identities for the given row ids, skipping any
	// that do not exist.
	FindByIDs(ctx context.Context, ids []int64) ([]Identity, error)

	// Create inserts a new identity, populating its ID. A duplicate
	// (entity_type, entity_id) insert yields a CONFLICT error.
	Create(ctx context.Context, ident *Identity) error

	// UpdateRole sets the account-level role.
	UpdateRole(ctx context.Context, id int64, role permission.Role) error

	// SetOnline flips the live flag and stamps last_seen when going offline.
	SetOnline(ctx context.Context, id int64, online bool, at time.Time) error

	// Search finds identities whose display name or email matches the query.
	Search(ctx context.Context, query string, limit int) ([]Identity, error)
}

// RecordsDirectory is the read-only academic-records collaborator.
type RecordsDirectory interface {
	// Lookup fetches the display attributes for a record, or a NOT_FOUND
	// error when the record does not exist.
	Lookup(ctx context.Context, entityType EntityType, entityID int64) (*EntityRecord, error)
}
