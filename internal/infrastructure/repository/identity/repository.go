package identity

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/infrastructure/database/entities"
	"campus-chat/chat-api/internal/infrastructure/metrics"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// Repository is the gorm-backed identity store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByEntity(ctx context.Context, entityType domain.EntityType, entityID int64) (*domain.Identity, error) {
	var entity entities.ChatIdentity
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewDatabase("failed to find identity by entity", err)
	}
	ident := mapEntity(entity)
	return &ident, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Identity, error) {
	var entity entities.ChatIdentity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewNotFound(platformerrors.LayerRepository, "identity not found", err)
		}
		return nil, platformerrors.NewDatabase("failed to find identity by id", err)
	}
	ident := mapEntity(entity)
	return &ident, nil
}

func (r *Repository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Identity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []entities.ChatIdentity
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewDatabase("failed to find identities", err)
	}
	out := make([]domain.Identity, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapEntity(row))
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, ident *domain.Identity) error {
	entity := entities.ChatIdentity{
		EntityType:  string(ident.EntityType),
		EntityID:    ident.EntityID,
		DisplayName: ident.DisplayName,
		Email:       ident.Email,
		Role:        string(ident.Role),
	}
	err := r.db.WithContext(ctx).Create(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewConflict(platformerrors.LayerRepository, "identity already provisioned", err)
		}
		return platformerrors.NewDatabase("failed to create identity", err)
	}
	ident.ID = entity.ID
	ident.CreatedAt = entity.CreatedAt
	ident.UpdatedAt = entity.UpdatedAt
	metrics.IdentitiesProvisioned.Inc()
	return nil
}

func (r *Repository) UpdateRole(ctx context.Context, id int64, role permission.Role) error {
	err := r.db.WithContext(ctx).
		Model(&entities.ChatIdentity{}).
		Where("id = ?", id).
		Update("role", string(role)).Error
	if err != nil {
		return platformerrors.NewDatabase("failed to update identity role", err)
	}
	return nil
}

func (r *Repository) SetOnline(ctx context.Context, id int64, online bool, at time.Time) error {
	updates := map[string]any{"is_online": online}
	if !online {
		updates["last_seen"] = at
	}
	err := r.db.WithContext(ctx).
		Model(&entities.ChatIdentity{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return platformerrors.NewDatabase("failed to update identity presence", err)
	}
	return nil
}

func (r *Repository) Search(ctx context.Context, query string, limit int) ([]domain.Identity, error) {
	var rows []entities.ChatIdentity
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("display_name LIKE ? OR email LIKE ?", pattern, pattern).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewDatabase("failed to search identities", err)
	}
	out := make([]domain.Identity, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapEntity(row))
	}
	return out, nil
}

func mapEntity(entity entities.ChatIdentity) domain.Identity {
	return domain.Identity{
		ID:          entity.ID,
		EntityType:  domain.EntityType(entity.EntityType),
		EntityID:    entity.EntityID,
		DisplayName: entity.DisplayName,
		Email:       entity.Email,
		Role:        permission.Role(entity.Role),
		IsOnline:    entity.IsOnline,
		IsSuspended: entity.IsSuspended,
		LastSeen:    entity.LastSeen,
		StreakCount: entity.StreakCount,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}
