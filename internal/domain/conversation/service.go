package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

const (
	reasonNotMember = "only members can add participants"
)

// Store owns conversation and participant lifecycle.
type Store struct {
	convs    Repository
	parts    ParticipantRepository
	resolver identity.Resolver
	perms    *permission.Engine
	log      zerolog.Logger
}

// NewStore creates a conversation store.
func NewStore(convs Repository, parts ParticipantRepository, resolver identity.Resolver, perms *permission.Engine, log zerolog.Logger) *Store {
	return &Store{
		convs:    convs,
		parts:    parts,
		resolver: resolver,
		perms:    perms,
		log:      log.With().Str("component", "conversation-store").Logger(),
	}
}

// CreateDirect opens (or reuses) the direct conversation between the actor
// and target. At most one DIRECT conversation exists per unordered pair, so a
// repeated call returns the existing conversation.
func (s *Store) CreateDirect(ctx context.Context, actor identity.Principal, targetRef identity.Ref) (*Conversation, error) {
	target, err := s.resolver.ResolveRef(ctx, targetRef)
	if err != nil {
		return nil, err
	}
	if target.ID == actor.ID {
		return nil, platformerrors.NewValidation(platformerrors.LayerDomain, "cannot open a direct chat with yourself")
	}
	if permErr := s.perms.CanDirectMessage(actor.Role, target.Role); permErr != nil {
		return nil, permErr
	}

	key := DirectKey(actor.ID, target.ID)
	if existing, err := s.convs.FindByKey(ctx, key); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	conv := &Conversation{Type: TypeDirect}
	err = s.convs.Create(ctx, conv, key)
	if platformerrors.IsType(err, platformerrors.ErrorTypeConflict) {
		// Lost the insert race against the other side of the pair.
		return s.convs.FindByKey(ctx, key)
	}
	if err != nil {
		return nil, err
	}

	for _, id := range []int64{actor.ID, target.ID} {
		if err := s.addMember(ctx, conv.ID, id, permission.ParticipantMember, nil); err != nil {
			return nil, err
		}
	}

	s.log.Info().Int64("conversation_id", conv.ID).Int64("actor", actor.ID).Int64("target", target.ID).Msg("direct conversation created")
	return conv, nil
}

// CreateGroup creates a PRIVATE group with the actor as admin. When a student
// creates the group, targets that are not students are skipped with a log
// line rather than failing the call; unresolvable targets are skipped the
// same way.
func (s *Store) CreateGroup(ctx context.Context, actor identity.Principal, name string, participantRefs []identity.Ref) (*Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, platformerrors.NewValidation(platformerrors.LayerDomain, "group name must not be empty")
	}

	conv := &Conversation{Type: TypeGroup, Scope: ScopePrivate, Name: name}
	if err := s.convs.Create(ctx, conv, ""); err != nil {
		return nil, err
	}
	if err := s.addMember(ctx, conv.ID, actor.ID, permission.ParticipantAdmin, nil); err != nil {
		return nil, err
	}

	addedBy := actor.ID
	for _, ref := range participantRefs {
		target, err := s.resolver.ResolveRef(ctx, ref)
		if err != nil {
			s.log.Warn().Err(err).Stringer("ref", ref).Int64("conversation_id", conv.ID).Msg("skipping unresolvable group participant")
			continue
		}
		if target.ID == actor.ID {
			continue
		}
		if permErr := s.perms.CanAddToGroup(actor.Role, target.Role); permErr != nil {
			s.log.Info().
				Int64("conversation_id", conv.ID).
				Int64("target", target.ID).
				Str("target_role", string(target.Role)).
				Msg("skipping group participant not addable by student")
			continue
		}
		if err := s.addMember(ctx, conv.ID, target.ID, permission.ParticipantMember, &addedBy); err != nil {
			return nil, err
		}
	}

	s.log.Info().Int64("conversation_id", conv.ID).Str("name", name).Int64("actor", actor.ID).Msg("group conversation created")
	return conv, nil
}

// EnsureGroupAndJoin finds or creates the standing group keyed by
// (name, GROUP, scope) and makes the identity a member. Both steps are
// idempotent; races converge on the database uniqueness constraints.
func (s *Store) EnsureGroupAndJoin(ctx context.Context, name string, scope Scope, identityID int64) (*Conversation, error) {
	key := GroupKey(name, scope)

	conv, err := s.convs.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv = &Conversation{Type: TypeGroup, Scope: scope, Name: name}
		err = s.convs.Create(ctx, conv, key)
		if platformerrors.IsType(err, platformerrors.ErrorTypeConflict) {
			conv, err = s.convs.FindByKey(ctx, key)
			if err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
	}

	if err := s.addMember(ctx, conv.ID, identityID, permission.ParticipantMember, nil); err != nil {
		return nil, err
	}
	return conv, nil
}

// AddParticipant adds an identity to a conversation. The actor must already
// be a member; a student actor may only add students. Adding an existing
// member is a no-op returning the existing edge.
func (s *Store) AddParticipant(ctx context.Context, actor identity.Principal, conversationID int64, targetRef identity.Ref) (*Participant, error) {
	if _, err := s.convs.FindByID(ctx, conversationID); err != nil {
		return nil, err
	}

	actorPart, err := s.parts.Find(ctx, conversationID, actor.ID)
	if err != nil {
		return nil, err
	}
	if actorPart == nil {
		return nil, platformerrors.NewForbidden(reasonNotMember)
	}

	target, err := s.resolver.ResolveRef(ctx, targetRef)
	if err != nil {
		return nil, err
	}
	if permErr := s.perms.CanAddToGroup(actor.Role, target.Role); permErr != nil {
		return nil, permErr
	}

	if existing, err := s.parts.Find(ctx, conversationID, target.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	addedBy := actor.ID
	p := &Participant{
		ConversationID:    conversationID,
		IdentityID:        target.ID,
		Role:              permission.ParticipantMember,
		AddedByIdentityID: &addedBy,
	}
	err = s.parts.Add(ctx, p)
	if platformerrors.IsType(err, platformerrors.ErrorTypeConflict) {
		return s.parts.Find(ctx, conversationID, target.ID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveParticipant removes a membership edge. Self-removal is "leave" and is
// blocked for students whose row was added by staff; removing someone else
// requires a system-admin role or participant role exactly admin. DIRECT
// conversation rows survive a leave.
func (s *Store) RemoveParticipant(ctx context.Context, actor identity.Principal, conversationID, targetID int64) error {
	if _, err := s.convs.FindByID(ctx, conversationID); err != nil {
		return err
	}
	targetPart, err := s.parts.Find(ctx, conversationID, targetID)
	if err != nil {
		return err
	}
	if targetPart == nil {
		return platformerrors.NewNotFound(platformerrors.LayerDomain, "participant not found", nil)
	}

	if actor.ID == targetID {
		var addedByRole permission.Role
		if targetPart.AddedByIdentityID != nil {
			adder, err := s.resolver.Get(ctx, *targetPart.AddedByIdentityID)
			if err == nil {
				addedByRole = adder.Role
			} else if !platformerrors.IsType(err, platformerrors.ErrorTypeNotFound) {
				return err
			}
		}
		if permErr := s.perms.CanLeave(actor.Role, addedByRole); permErr != nil {
			return permErr
		}
	} else {
		actorPart, err := s.parts.Find(ctx, conversationID, actor.ID)
		if err != nil {
			return err
		}
		var actorRole permission.ParticipantRole
		if actorPart != nil {
			actorRole = actorPart.Role
		}
		if permErr := s.perms.CanRemoveParticipant(actor.Role, actorRole); permErr != nil {
			return permErr
		}
	}

	if err := s.parts.Remove(ctx, conversationID, targetID); err != nil {
		return err
	}
	s.log.Info().Int64("conversation_id", conversationID).Int64("target", targetID).Int64("actor", actor.ID).Msg("participant removed")
	return nil
}

// ChangeRole sets a participant's conversation role. Allowed for system-admin
// roles and for participants whose own role is admin; co-admins may not grant
// elevation.
func (s *Store) ChangeRole(ctx context.Context, actor identity.Principal, conversationID, targetID int64, newRole permission.ParticipantRole) error {
	if !permission.ValidParticipantRole(newRole) {
		return platformerrors.NewValidation(platformerrors.LayerDomain, "invalid participant role")
	}
	if _, err := s.convs.FindByID(ctx, conversationID); err != nil {
		return err
	}
	targetPart, err := s.parts.Find(ctx, conversationID, targetID)
	if err != nil {
		return err
	}
	if targetPart == nil {
		return platformerrors.NewNotFound(platformerrors.LayerDomain, "participant not found", nil)
	}

	actorPart, err := s.parts.Find(ctx, conversationID, actor.ID)
	if err != nil {
		return err
	}
	var actorRole permission.ParticipantRole
	if actorPart != nil {
		actorRole = actorPart.Role
	}
	if permErr := s.perms.CanChangeRole(actor.Role, actorRole); permErr != nil {
		return permErr
	}

	return s.parts.UpdateRole(ctx, conversationID, targetID, newRole)
}

// Get returns a conversation by id.
func (s *Store) Get(ctx context.Context, id int64) (*Conversation, error) {
	return s.convs.FindByID(ctx, id)
}

// ListForIdentity returns the conversations the identity participates in.
func (s *Store) ListForIdentity(ctx context.Context, identityID int64) ([]Conversation, error) {
	return s.convs.ListByIdentity(ctx, identityID)
}

// Participants returns the membership edges of a conversation.
func (s *Store) Participants(ctx context.Context, conversationID int64) ([]Participant, error) {
	return s.parts.ListByConversation(ctx, conversationID)
}

// Membership returns the actor's edge in the conversation, or nil when the
// actor is not a participant.
func (s *Store) Membership(ctx context.Context, conversationID, identityID int64) (*Participant, error) {
	return s.parts.Find(ctx, conversationID, identityID)
}

// ParticipantIDs returns the identity ids of a conversation's participants.
func (s *Store) ParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error) {
	return s.parts.IdentityIDs(ctx, conversationID)
}

// Touch bumps the conversation's updated_at.
func (s *Store) Touch(ctx context.Context, conversationID int64, at time.Time) error {
	return s.convs.Touch(ctx, conversationID, at)
}

func (s *Store) addMember(ctx context.Context, conversationID, identityID int64, role permission.ParticipantRole, addedBy *int64) error {
	err := s.parts.Add(ctx, &Participant{
		ConversationID:    conversationID,
		IdentityID:        identityID,
		Role:              role,
		AddedByIdentityID: addedBy,
	})
	if platformerrors.IsType(err, platformerrors.ErrorTypeConflict) {
		return nil
	}
	return err
}
