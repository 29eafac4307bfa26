package message

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "campus-chat/chat-api/internal/domain/message"
	"campus-chat/chat-api/internal/infrastructure/database/entities"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// Repository is the gorm-backed message store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, msg *domain.Message) error {
	entity := entities.Message{
		ConversationID:   msg.ConversationID,
		SenderIdentityID: msg.SenderIdentityID,
		Content:          msg.Content,
		Type:             msg.Type,
		Metadata:         string(msg.Metadata),
	}
	err := r.db.WithContext(ctx).Create(&entity).Error
	if err != nil {
		return platformerrors.NewDatabase("failed to create message", err)
	}
	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Message, error) {
	var entity entities.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewNotFound(platformerrors.LayerRepository, "message not found", err)
		}
		return nil, platformerrors.NewDatabase("failed to find message", err)
	}
	msg := mapMessage(entity)
	return &msg, nil
}

func (r *Repository) UpdateContent(ctx context.Context, id int64, content string) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id = ?", id).
		Updates(map[string]any{"content": content, "is_edited": true}).Error
	if err != nil {
		return platformerrors.NewDatabase("failed to update message", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&entities.MessageStatus{}).Error; err != nil {
			return platformerrors.NewDatabase("failed to delete message statuses", err)
		}
		if err := tx.Where("id = ?", id).Delete(&entities.Message{}).Error; err != nil {
			return platformerrors.NewDatabase("failed to delete message", err)
		}
		return nil
	})
}

func (r *Repository) List(ctx context.Context, conversationID int64, limit int, beforeID int64) ([]domain.Message, error) {
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var rows []entities.Message
	if err := q.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewDatabase("failed to list messages", err)
	}
	// Query runs descending for the limit; reverse so callers get ascending.
	out := make([]domain.Message, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = mapMessage(row)
	}
	return out, nil
}

func (r *Repository) Search(ctx context.Context, identityID int64, query string, limit int) ([]domain.Message, error) {
	var rows []entities.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants p ON p.conversation_id = messages.conversation_id").
		Where("p.identity_id = ? AND messages.content LIKE ?", identityID, "%"+query+"%").
		Order("messages.id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewDatabase("failed to search messages", err)
	}
	out := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMessage(row))
	}
	return out, nil
}

func (r *Repository) UpsertStatus(ctx context.Context, marker *domain.StatusMarker) error {
	entity := entities.MessageStatus{
		MessageID:  marker.MessageID,
		IdentityID: marker.IdentityID,
		Status:     marker.Status,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "identity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(&entity).Error
	if err != nil {
		return platformerrors.NewDatabase("failed to upsert message status", err)
	}
	return nil
}

func mapMessage(entity entities.Message) domain.Message {
	var metadata json.RawMessage
	if entity.Metadata != "" {
		metadata = json.RawMessage(entity.Metadata)
	}
	return domain.Message{
		ID:               entity.ID,
		ConversationID:   entity.ConversationID,
		SenderIdentityID: entity.SenderIdentityID,
		Content:          entity.Content,
		Type:             entity.Type,
		Metadata:         metadata,
		IsEdited:         entity.IsEdited,
		CreatedAt:        entity.CreatedAt,
	}
}
