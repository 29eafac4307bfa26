package message

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/domain/presence"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// Denial reasons for the edit path; both are part of the API contract.
const (
	ReasonNotSender     = "only the sender can edit a message"
	ReasonWindowExpired = "edit window expired"

	reasonNotParticipant = "only participants can send messages"
)

// ConversationDirectory is the slice of the conversation store the message
// lifecycle needs: membership checks, fan-out targets and activity bumps.
type ConversationDirectory interface {
	Membership(ctx context.Context, conversationID, identityID int64) (*conversation.Participant, error)
	ParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error)
	Touch(ctx context.Context, conversationID int64, at time.Time) error
}

// Notifier fans out real-time events, best-effort.
type Notifier interface {
	Notify(identityIDs []int64, ev presence.Event)
}

// Service is the message lifecycle.
type Service struct {
	msgs       Repository
	convs      ConversationDirectory
	resolver   identity.Resolver
	perms      *permission.Engine
	notifier   Notifier
	editWindow time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewService creates the message lifecycle service.
func NewService(msgs Repository, convs ConversationDirectory, resolver identity.Resolver, perms *permission.Engine, notifier Notifier, editWindow time.Duration, log zerolog.Logger) *Service {
	return &Service{
		msgs:       msgs,
		convs:      convs,
		resolver:   resolver,
		perms:      perms,
		notifier:   notifier,
		editWindow: editWindow,
		now:        time.Now,
		log:        log.With().Str("component", "message-lifecycle").Logger(),
	}
}

// Create persists a message from a current participant, bumps the
// conversation's updated_at and fans out a new_message event to every
// participant, sender included for client echo. The message is durable before
// any fan-out is issued; fan-out failures never reach the caller.
func (s *Service) Create(ctx context.Context, actor identity.Principal, conversationID int64, content, msgType string, metadata json.RawMessage) (*Hydrated, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, platformerrors.NewValidation(platformerrors.LayerDomain, "message content must not be empty")
	}
	if msgType == "" {
		msgType = "text"
	}

	member, err := s.convs.Membership(ctx, conversationID, actor.ID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, platformerrors.NewForbidden(reasonNotParticipant)
	}

	msg := &Message{
		ConversationID:   conversationID,
		SenderIdentityID: actor.ID,
		Content:          content,
		Type:             msgType,
		Metadata:         metadata,
	}
	if err := s.msgs.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.convs.Touch(ctx, conversationID, msg.CreatedAt); err != nil {
		s.log.Warn().Err(err).Int64("conversation_id", conversationID).Msg("failed to bump conversation activity")
	}

	sender, err := s.resolver.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	hydrated := &Hydrated{Message: *msg, Sender: sender.Summarize()}

	s.fanOut(ctx, conversationID, presence.Event{Type: presence.EventNewMessage, Data: hydrated})
	return hydrated, nil
}

// Edit rewrites a message's content. Only the original sender may edit, and
// only within the edit window; the two rejections carry distinct reasons.
func (s *Service) Edit(ctx context.Context, actor identity.Principal, messageID int64, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, platformerrors.NewValidation(platformerrors.LayerDomain, "message content must not be empty")
	}

	msg, err := s.msgs.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderIdentityID != actor.ID {
		return nil, platformerrors.NewForbidden(ReasonNotSender)
	}
	if s.now().Sub(msg.CreatedAt) > s.editWindow {
		return nil, platformerrors.NewForbidden(ReasonWindowExpired)
	}

	if err := s.msgs.UpdateContent(ctx, messageID, content); err != nil {
		return nil, err
	}
	msg.Content = content
	msg.IsEdited = true
	return msg, nil
}

// Delete removes a message when the actor holds a system-admin role, is the
// original sender, or holds admin/co-admin in the message's conversation.
func (s *Service) Delete(ctx context.Context, actor identity.Principal, messageID int64) error {
	msg, err := s.msgs.FindByID(ctx, messageID)
	if err != nil {
		return err
	}

	member, err := s.convs.Membership(ctx, msg.ConversationID, actor.ID)
	if err != nil {
		return err
	}
	var participantRole permission.ParticipantRole
	if member != nil {
		participantRole = member.Role
	}
	if permErr := s.perms.CanDeleteMessage(actor.Role, msg.SenderIdentityID == actor.ID, participantRole); permErr != nil {
		return permErr
	}

	if err := s.msgs.Delete(ctx, messageID); err != nil {
		return err
	}
	s.log.Info().Int64("message_id", messageID).Int64("actor", actor.ID).Msg("message deleted")
	return nil
}

// List returns conversation history, ascending, for a current participant.
func (s *Service) List(ctx context.Context, actor identity.Principal, conversationID int64, limit int, beforeID int64) ([]Message, error) {
	member, err := s.convs.Membership(ctx, conversationID, actor.ID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, platformerrors.NewForbidden(reasonNotParticipant)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.msgs.List(ctx, conversationID, limit, beforeID)
}

// Search finds messages matching the query within conversations the actor
// participates in.
func (s *Service) Search(ctx context.Context, actor identity.Principal, query string, limit int) ([]Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, platformerrors.NewValidation(platformerrors.LayerDomain, "search query must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.msgs.Search(ctx, actor.ID, query, limit)
}

// MarkRead upserts the actor's read marker for a message and fans out a read
// receipt to the other participants.
func (s *Service) MarkRead(ctx context.Context, actor identity.Principal, conversationID, messageID int64) error {
	member, err := s.convs.Membership(ctx, conversationID, actor.ID)
	if err != nil {
		return err
	}
	if member == nil {
		return platformerrors.NewForbidden(reasonNotParticipant)
	}

	msg, err := s.msgs.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ConversationID != conversationID {
		return platformerrors.NewValidation(platformerrors.LayerDomain, "message does not belong to conversation")
	}

	if err := s.msgs.UpsertStatus(ctx, &StatusMarker{MessageID: messageID, IdentityID: actor.ID, Status: StatusRead}); err != nil {
		return err
	}

	ids, err := s.convs.ParticipantIDs(ctx, conversationID)
	if err != nil {
		s.log.Warn().Err(err).Int64("conversation_id", conversationID).Msg("failed to load read-receipt recipients")
		return nil
	}
	others := ids[:0:0]
	for _, id := range ids {
		if id != actor.ID {
			others = append(others, id)
		}
	}
	s.notifier.Notify(others, presence.Event{
		Type: presence.EventReadReceipt,
		Data: presence.ReadReceiptData{ConversationID: conversationID, MessageID: messageID, IdentityID: actor.ID},
	})
	return nil
}

func (s *Service) fanOut(ctx context.Context, conversationID int64, ev presence.Event) {
	ids, err := s.convs.ParticipantIDs(ctx, conversationID)
	if err != nil {
		s.log.Warn().Err(err).Int64("conversation_id", conversationID).Msg("failed to load fan-out recipients")
		return
	}
	s.notifier.Notify(ids, ev)
}
