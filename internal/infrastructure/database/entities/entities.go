// Package entities holds the persisted chat schema. Domain types never leak
// gorm tags; repositories map between the two.
package entities

import "time"

// ChatIdentity is the persisted chat identity row. The unique index on
// (entity_type, entity_id) is what makes concurrent first-touch provisioning
// converge.
type ChatIdentity struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	EntityType  string     `gorm:"type:varchar(16);not null;uniqueIndex:idx_identity_entity"`
	EntityID    int64      `gorm:"not null;uniqueIndex:idx_identity_entity"`
	DisplayName string     `gorm:"type:varchar(120);not null"`
	Email       string     `gorm:"type:varchar(190);index"`
	Role        string     `gorm:"type:varchar(32);not null"`
	IsOnline    bool       `gorm:"not null;default:false"`
	IsSuspended bool       `gorm:"not null;default:false"`
	LastSeen    *time.Time
	StreakCount int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (ChatIdentity) TableName() string {
	return "chat_identities"
}

// Conversation is a direct or group conversation. DedupKey carries the
// direct-pair key for DIRECT rows and the (name, scope) key for standing
// groups; private groups leave it null so the unique index only bites where
// singletons are required.
type Conversation struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Type      string  `gorm:"type:varchar(10);not null;index"`
	Scope     string  `gorm:"type:varchar(16)"`
	Name      string  `gorm:"type:varchar(120)"`
	DedupKey  *string `gorm:"type:varchar(190);uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Participant is the membership edge. AddedByIdentityID never changes after
// insert.
type Participant struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	ConversationID    int64  `gorm:"not null;uniqueIndex:idx_participant_conv_identity"`
	IdentityID        int64  `gorm:"not null;uniqueIndex:idx_participant_conv_identity;index"`
	Role              string `gorm:"type:varchar(16);not null;default:'member'"`
	AddedByIdentityID *int64
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (Participant) TableName() string {
	return "conversation_participants"
}

// Message is a persisted chat message. Metadata is serialized JSON.
type Message struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	ConversationID   int64  `gorm:"not null;index"`
	SenderIdentityID int64  `gorm:"not null;index"`
	Content          string `gorm:"type:text;not null"`
	Type             string `gorm:"type:varchar(24);not null;default:'text'"`
	Metadata         string `gorm:"type:text"`
	IsEdited         bool   `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageStatus is the per-recipient delivery/read marker.
type MessageStatus struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	MessageID  int64  `gorm:"not null;uniqueIndex:idx_status_message_identity"`
	IdentityID int64  `gorm:"not null;uniqueIndex:idx_status_message_identity"`
	Status     string `gorm:"type:varchar(16);not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (MessageStatus) TableName() string {
	return "message_statuses"
}
