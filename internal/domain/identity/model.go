// Package identity maps campus records (students, staff) onto chat
// identities. An identity is persistent once it has a row; before that it is
// addressed through a virtual Ref derived from the backing record.
package identity

import (
	"time"

	"campus-chat/chat-api/internal/domain/permission"
)

// EntityType classifies the academic record an identity is derived from.
type EntityType string

const (
	EntityStudent EntityType = "student"
	EntityStaff   EntityType = "staff"
)

// Identity is a chat-facing actor backed by an academic record.
type Identity struct {
	ID          int64
	EntityType  EntityType
	EntityID    int64
	DisplayName string
	Email       string
	Role        permission.Role
	IsOnline    bool
	IsSuspended bool
	LastSeen    *time.Time
	StreakCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary is the subset of identity fields shipped inside fan-out events and
// list responses.
type Summary struct {
	ID          int64           `json:"id"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email"`
	Role        permission.Role `json:"role"`
	IsOnline    bool            `json:"is_online"`
}

// Summarize projects an identity into its wire summary.
func (i *Identity) Summarize() Summary {
	return Summary{
		ID:          i.ID,
		DisplayName: i.DisplayName,
		Email:       i.Email,
		Role:        i.Role,
		IsOnline:    i.IsOnline,
	}
}

// EntityRecord is the read-only projection of an academic record supplied by
// the records collaborator.
type EntityRecord struct {
	DisplayName  string
	Email        string
	Role         permission.Role
	Level        int
	MatricNumber string
}
