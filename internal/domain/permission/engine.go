package permission

import (
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// Denial reasons are part of the API contract; handlers return them verbatim.
const (
	ReasonDirectChatElevated = "students cannot start a direct chat with this role"
	ReasonAddNonStudent      = "students can only add other students"
	ReasonRemoveNotAdmin     = "only a group admin can remove participants"
	ReasonLeaveStaffAdded    = "cannot leave without admin intervention"
	ReasonChangeRoleNotAdmin = "only a group admin can change participant roles"
	ReasonDeleteMessage      = "not allowed to delete this message"
)

// systemAdminRoles always pass participant-level checks for remove,
// role-change and message-delete.
var systemAdminRoles = map[Role]bool{
	RoleAdmin:      true,
	RoleSuperAdmin: true,
}

// Engine evaluates the permission matrix. The elevated set (roles a student
// may not open a direct chat with) is configuration; everything else is fixed.
type Engine struct {
	elevated map[Role]bool
}

// NewEngine builds an Engine from the configured elevated role names.
func NewEngine(elevatedRoles []string) *Engine {
	elevated := make(map[Role]bool, len(elevatedRoles))
	for _, r := range elevatedRoles {
		elevated[Role(r)] = true
	}
	return &Engine{elevated: elevated}
}

// IsSystemAdmin reports whether the role bypasses participant-level checks.
func (e *Engine) IsSystemAdmin(role Role) bool {
	return systemAdminRoles[role]
}

// IsStaffTier reports whether the role belongs to staff. Any non-student role
// counts: the leave restriction keys off "was added by staff", not a specific
// staff rank.
func (e *Engine) IsStaffTier(role Role) bool {
	return role != "" && role != RoleStudent
}

// IsElevated reports whether the role is in the configured elevated set.
func (e *Engine) IsElevated(role Role) bool {
	return e.elevated[role]
}

// CanDirectMessage decides whether actor may open a direct chat with target.
func (e *Engine) CanDirectMessage(actor, target Role) *platformerrors.PlatformError {
	if actor == RoleStudent && e.elevated[target] {
		return platformerrors.NewForbidden(ReasonDirectChatElevated)
	}
	return nil
}

// CanAddToGroup decides whether actor may add target to a group conversation.
func (e *Engine) CanAddToGroup(actor, target Role) *platformerrors.PlatformError {
	if actor == RoleStudent && target != RoleStudent {
		return platformerrors.NewForbidden(ReasonAddNonStudent)
	}
	return nil
}

// CanRemoveParticipant decides whether actor may remove another participant.
// System admins pass unconditionally; otherwise the actor's own participant
// role must be exactly admin (co-admin does not qualify).
func (e *Engine) CanRemoveParticipant(actor Role, actorParticipant ParticipantRole) *platformerrors.PlatformError {
	if systemAdminRoles[actor] {
		return nil
	}
	if actorParticipant == ParticipantAdmin {
		return nil
	}
	return platformerrors.NewForbidden(ReasonRemoveNotAdmin)
}

// CanLeave decides whether actor may remove their own participant row.
// addedBy is the role of the identity that added them, or empty when the row
// was self-added.
func (e *Engine) CanLeave(actor, addedBy Role) *platformerrors.PlatformError {
	if actor == RoleStudent && e.IsStaffTier(addedBy) {
		return platformerrors.NewForbidden(ReasonLeaveStaffAdded)
	}
	return nil
}

// CanChangeRole decides whether actor may change another participant's role.
func (e *Engine) CanChangeRole(actor Role, actorParticipant ParticipantRole) *platformerrors.PlatformError {
	if systemAdminRoles[actor] {
		return nil
	}
	if actorParticipant == ParticipantAdmin {
		return nil
	}
	return platformerrors.NewForbidden(ReasonChangeRoleNotAdmin)
}

// CanDeleteMessage decides whether actor may delete a message. isSender marks
// the original sender; actorParticipant is the actor's role in the message's
// conversation (empty when not a participant).
func (e *Engine) CanDeleteMessage(actor Role, isSender bool, actorParticipant ParticipantRole) *platformerrors.PlatformError {
	if systemAdminRoles[actor] || isSender {
		return nil
	}
	if actorParticipant == ParticipantAdmin || actorParticipant == ParticipantCoAdmin {
		return nil
	}
	return platformerrors.NewForbidden(ReasonDeleteMessage)
}
