package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"campus-chat/chat-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies the chat schema. The academic-records tables are owned
// by the records system and are not migrated here.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	err := db.WithContext(ctx).AutoMigrate(
		&entities.ChatIdentity{},
		&entities.Conversation{},
		&entities.Participant{},
		&entities.Message{},
		&entities.MessageStatus{},
	)
	if err != nil {
		return err
	}
	log.Info().Msg("applied chat schema migrations")
	return nil
}
