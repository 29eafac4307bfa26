// Package permission holds the role/permission decision tables for the chat
// service. The engine is pure: it owns no state beyond the configured role
// sets, so the whole matrix is unit-testable without touching storage or
// transport.
package permission

// Role is an account-level role carried by the authenticated principal.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleLecturer   Role = "LECTURER"
	RoleHOD        Role = "HOD"
	RoleDean       Role = "DEAN"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// ParticipantRole is the role an identity holds inside one conversation.
type ParticipantRole string

const (
	ParticipantMember  ParticipantRole = "member"
	ParticipantAdmin   ParticipantRole = "admin"
	ParticipantCoAdmin ParticipantRole = "co-admin"
)

// ValidParticipantRole reports whether r is one of the assignable roles.
func ValidParticipantRole(r ParticipantRole) bool {
	switch r {
	case ParticipantMember, ParticipantAdmin, ParticipantCoAdmin:
		return true
	}
	return false
}
