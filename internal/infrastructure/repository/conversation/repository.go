package conversation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/infrastructure/database/entities"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// Repository is the gorm-backed conversation store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, conv *domain.Conversation, dedupKey string) error {
	entity := entities.Conversation{
		Type:  string(conv.Type),
		Scope: string(conv.Scope),
		Name:  conv.Name,
	}
	if dedupKey != "" {
		entity.DedupKey = &dedupKey
	}
	err := r.db.WithContext(ctx).Create(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewConflict(platformerrors.LayerRepository, "conversation already exists", err)
		}
		return platformerrors.NewDatabase("failed to create conversation", err)
	}
	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewNotFound(platformerrors.LayerRepository, "conversation not found", err)
		}
		return nil, platformerrors.NewDatabase("failed to find conversation", err)
	}
	conv := mapConversation(entity)
	return &conv, nil
}

func (r *Repository) FindByKey(ctx context.Context, key string) (*domain.Conversation, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).Where("dedup_key = ?", key).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewDatabase("failed to find conversation by key", err)
	}
	conv := mapConversation(entity)
	return &conv, nil
}

func (r *Repository) Touch(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
	if err != nil {
		return platformerrors.NewDatabase("failed to touch conversation", err)
	}
	return nil
}

func (r *Repository) ListByIdentity(ctx context.Context, identityID int64) ([]domain.Conversation, error) {
	var rows []entities.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants p ON p.conversation_id = conversations.id").
		Where("p.identity_id = ?", identityID).
		Order("conversations.updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewDatabase("failed to list conversations", err)
	}
	out := make([]domain.Conversation, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapConversation(row))
	}
	return out, nil
}

func mapConversation(entity entities.Conversation) domain.Conversation {
	return domain.Conversation{
		ID:        entity.ID,
		Type:      domain.Type(entity.Type),
		Scope:     domain.Scope(entity.Scope),
		Name:      entity.Name,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

// ParticipantRepository is the gorm-backed membership store.
type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Add(ctx context.Context, p *domain.Participant) error {
	entity := entities.Participant{
		ConversationID:    p.ConversationID,
		IdentityID:        p.IdentityID,
		Role:              string(p.Role),
		AddedByIdentityID: p.AddedByIdentityID,
	}
	err := r.db.WithContext(ctx).Create(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewConflict(platformerrors.LayerRepository, "already a participant", err)
		}
		return platformerrors.NewDatabase("failed to add participant", err)
	}
	p.ID = entity.ID
	p.CreatedAt = entity.CreatedAt
	return nil
}

func (r *ParticipantRepository) Find(ctx context.Context, conversationID, identityID int64) (*domain.Participant, error) {
	var entity entities.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND identity_id = ?", conversationID, identityID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewDatabase("failed to find participant", err)
	}
	p := mapParticipant(entity)
	return &p, nil
}

func (r *ParticipantRepository) ListByConversation(ctx context.Context, conversationID int64) ([]domain.Participant, error) {
	var rows []entities.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewDatabase("failed to list participants", err)
	}
	out := make([]domain.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapParticipant(row))
	}
	return out, nil
}

func (r *ParticipantRepository) IdentityIDs(ctx context.Context, conversationID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&entities.Participant{}).
		Where("conversation_id = ?", conversationID).
		Pluck("identity_id", &ids).Error
	if err != nil {
		return nil, platformerrors.NewDatabase("failed to list participant ids", err)
	}
	return ids, nil
}

func (r *ParticipantRepository) Remove(ctx context.Context, conversationID, identityID int64) error {
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND identity_id = ?", conversationID, identityID).
		Delete(&entities.Participant{}).Error
	if err != nil {
		return platformerrors.NewDatabase("failed to remove participant", err)
	}
	return nil
}

func (r *ParticipantRepository) UpdateRole(ctx context.Context, conversationID, identityID int64, role permission.ParticipantRole) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Participant{}).
		Where("conversation_id = ? AND identity_id = ?", conversationID, identityID).
		Update("role", string(role)).Error
	if err != nil {
		return platformerrors.NewDatabase("failed to update participant role", err)
	}
	return nil
}

func mapParticipant(entity entities.Participant) domain.Participant {
	return domain.Participant{
		ID:                entity.ID,
		ConversationID:    entity.ConversationID,
		IdentityID:        entity.IdentityID,
		Role:              permission.ParticipantRole(entity.Role),
		AddedByIdentityID: entity.AddedByIdentityID,
		CreatedAt:         entity.CreatedAt,
	}
}
