// Package conversation owns conversation and participant lifecycle: creation,
// direct-chat de-duplication, membership and role changes, and the leave
// restriction for staff-added students.
package conversation

import (
	"fmt"
	"time"

	"campus-chat/chat-api/internal/domain/permission"
)

// Type distinguishes direct chats from group chats.
type Type string

const (
	TypeDirect Type = "DIRECT"
	TypeGroup  Type = "GROUP"
)

// Scope classifies how a group conversation is derived. User-created groups
// are PRIVATE; the rest are standing groups managed by the auto-group sync.
type Scope string

const (
	ScopeGlobal     Scope = "global"
	ScopeLevel      Scope = "level"
	ScopeDepartment Scope = "department"
	ScopeCombined   Scope = "combined"
	ScopePrivate    Scope = "PRIVATE"
)

// Conversation is a direct chat or a group chat.
type Conversation struct {
	ID        int64
	Type      Type
	Scope     Scope
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant is the membership edge between an identity and a conversation.
// AddedByIdentityID is stamped at add time and never changes; self-joins
// leave it nil. It drives the leave restriction.
type Participant struct {
	ID                int64
	ConversationID    int64
	IdentityID        int64
	Role              permission.ParticipantRole
	AddedByIdentityID *int64
	CreatedAt         time.Time
}

// DirectKey builds the uniqueness key for the unordered identity pair of a
// direct conversation. Exactly one DIRECT conversation may exist per key.
func DirectKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("d:%d:%d", a, b)
}

// GroupKey builds the uniqueness key for a standing group. PRIVATE groups are
// not singletons and carry no key.
func GroupKey(name string, scope Scope) string {
	return fmt.Sprintf("g:%s:%s", scope, name)
}
