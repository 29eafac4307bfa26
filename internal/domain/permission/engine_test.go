package permission_test

import (
	"testing"

	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

func newEngine() *permission.Engine {
	return permission.NewEngine([]string{"DEAN", "ADMIN", "SUPER_ADMIN"})
}

func TestCanDirectMessage(t *testing.T) {
	engine := newEngine()
	tests := []struct {
		name    string
		actor   permission.Role
		target  permission.Role
		allowed bool
	}{
		{"student to student", permission.RoleStudent, permission.RoleStudent, true},
		{"student to lecturer", permission.RoleStudent, permission.RoleLecturer, true},
		{"student to hod", permission.RoleStudent, permission.RoleHOD, true},
		{"student to dean", permission.RoleStudent, permission.RoleDean, false},
		{"student to admin", permission.RoleStudent, permission.RoleAdmin, false},
		{"student to super admin", permission.RoleStudent, permission.RoleSuperAdmin, false},
		{"lecturer to dean", permission.RoleLecturer, permission.RoleDean, true},
		{"admin to student", permission.RoleAdmin, permission.RoleStudent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CanDirectMessage(tt.actor, tt.target)
			if (err == nil) != tt.allowed {
				t.Errorf("CanDirectMessage(%s, %s) = %v, want allowed=%v", tt.actor, tt.target, err, tt.allowed)
			}
		})
	}
}

func TestCanDirectMessageRespectsConfiguredSet(t *testing.T) {
	engine := permission.NewEngine([]string{"HOD"})
	if err := engine.CanDirectMessage(permission.RoleStudent, permission.RoleHOD); err == nil {
		t.Error("HOD should be blocked when configured elevated")
	}
	if err := engine.CanDirectMessage(permission.RoleStudent, permission.RoleDean); err != nil {
		t.Errorf("DEAN should be allowed when not configured: %v", err)
	}
}

func TestCanAddToGroup(t *testing.T) {
	engine := newEngine()
	tests := []struct {
		name    string
		actor   permission.Role
		target  permission.Role
		allowed bool
	}{
		{"student adds student", permission.RoleStudent, permission.RoleStudent, true},
		{"student adds lecturer", permission.RoleStudent, permission.RoleLecturer, false},
		{"student adds admin", permission.RoleStudent, permission.RoleAdmin, false},
		{"lecturer adds student", permission.RoleLecturer, permission.RoleStudent, true},
		{"lecturer adds dean", permission.RoleLecturer, permission.RoleDean, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CanAddToGroup(tt.actor, tt.target)
			if (err == nil) != tt.allowed {
				t.Errorf("CanAddToGroup(%s, %s) = %v, want allowed=%v", tt.actor, tt.target, err, tt.allowed)
			}
		})
	}
}

func TestCanRemoveParticipant(t *testing.T) {
	engine := newEngine()
	tests := []struct {
		name        string
		actor       permission.Role
		participant permission.ParticipantRole
		allowed     bool
	}{
		{"system admin without membership", permission.RoleAdmin, "", true},
		{"super admin without membership", permission.RoleSuperAdmin, "", true},
		{"group admin", permission.RoleStudent, permission.ParticipantAdmin, true},
		{"co-admin does not qualify", permission.RoleStudent, permission.ParticipantCoAdmin, false},
		{"plain member", permission.RoleStudent, permission.ParticipantMember, false},
		{"lecturer member", permission.RoleLecturer, permission.ParticipantMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CanRemoveParticipant(tt.actor, tt.participant)
			if (err == nil) != tt.allowed {
				t.Errorf("CanRemoveParticipant(%s, %s) = %v, want allowed=%v", tt.actor, tt.participant, err, tt.allowed)
			}
		})
	}
}

func TestCanLeave(t *testing.T) {
	engine := newEngine()
	tests := []struct {
		name    string
		actor   permission.Role
		addedBy permission.Role
		allowed bool
	}{
		{"student self-joined", permission.RoleStudent, "", true},
		{"student added by student", permission.RoleStudent, permission.RoleStudent, true},
		{"student added by lecturer", permission.RoleStudent, permission.RoleLecturer, false},
		{"student added by admin", permission.RoleStudent, permission.RoleAdmin, false},
		{"lecturer added by admin", permission.RoleLecturer, permission.RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CanLeave(tt.actor, tt.addedBy)
			if (err == nil) != tt.allowed {
				t.Errorf("CanLeave(%s, %s) = %v, want allowed=%v", tt.actor, tt.addedBy, err, tt.allowed)
			}
		})
	}
}

func TestCanLeaveDenialReason(t *testing.T) {
	engine := newEngine()
	err := engine.CanLeave(permission.RoleStudent, permission.RoleLecturer)
	if err == nil {
		t.Fatal("expected denial")
	}
	if err.Message != permission.ReasonLeaveStaffAdded {
		t.Errorf("reason = %q, want %q", err.Message, permission.ReasonLeaveStaffAdded)
	}
	if err.Type != platformerrors.ErrorTypeForbidden {
		t.Errorf("type = %s, want %s", err.Type, platformerrors.ErrorTypeForbidden)
	}
}

func TestCanChangeRole(t *testing.T) {
	engine := newEngine()
	tests := []struct {
		name        string
		actor       permission.Role
		participant permission.ParticipantRole
		allowed     bool
	}{
		{"system admin", permission.RoleSuperAdmin, "", true},
		{"group admin", permission.RoleStudent, permission.ParticipantAdmin, true},
		{"co-admin may not grant elevation", permission.RoleStudent, permission.ParticipantCoAdmin, false},
		{"member", permission.RoleStudent, permission.ParticipantMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CanChangeRole(tt.actor, tt.participant)
			if (err == nil) != tt.allowed {
				t.Errorf("CanChangeRole(%s, %s) = %v, want allowed=%v", tt.actor, tt.participant, err, tt.allowed)
			}
		})
	}
}

func TestCanDeleteMessage(t *testing.T) {
	engine := newEngine()
	tests := []struct {
		name        string
		actor       permission.Role
		isSender    bool
		participant permission.ParticipantRole
		allowed     bool
	}{
		{"system admin", permission.RoleAdmin, false, "", true},
		{"sender", permission.RoleStudent, true, permission.ParticipantMember, true},
		{"group admin", permission.RoleStudent, false, permission.ParticipantAdmin, true},
		{"co-admin", permission.RoleStudent, false, permission.ParticipantCoAdmin, true},
		{"plain member", permission.RoleStudent, false, permission.ParticipantMember, false},
		{"non-participant lecturer", permission.RoleLecturer, false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CanDeleteMessage(tt.actor, tt.isSender, tt.participant)
			if (err == nil) != tt.allowed {
				t.Errorf("CanDeleteMessage(%s, %v, %s) = %v, want allowed=%v", tt.actor, tt.isSender, tt.participant, err, tt.allowed)
			}
		})
	}
}
