package identity

import (
	"fmt"

	"campus-chat/chat-api/internal/utils/platformerrors"
)

// staffOffset separates the staff virtual-id range from the student range.
// Student records encode as -entityID, staff as -(entityID+staffOffset), so
// staff entity ids must stay below the offset for the two ranges not to
// overlap. The records schema caps staff ids well under this.
const staffOffset = 100000

// Ref addresses an identity that may or may not have been provisioned yet:
// either a persistent row id or a virtual reference to the backing record.
// The sign-encoded integer form exists only at the wire boundary; inside the
// service a Ref is always the explicit union.
type Ref struct {
	persistentID int64
	entityType   EntityType
	entityID     int64
}

// PersistentRef builds a Ref for an already-provisioned identity.
func PersistentRef(id int64) Ref {
	return Ref{persistentID: id}
}

// VirtualRef builds a Ref for a not-yet-provisioned identity.
func VirtualRef(entityType EntityType, entityID int64) Ref {
	return Ref{entityType: entityType, entityID: entityID}
}

// IsVirtual reports whether the Ref addresses an unprovisioned identity.
func (r Ref) IsVirtual() bool {
	return r.persistentID == 0
}

// PersistentID returns the row id for a persistent Ref; zero for virtual ones.
func (r Ref) PersistentID() int64 {
	return r.persistentID
}

// Entity returns the backing record reference for a virtual Ref.
func (r Ref) Entity() (EntityType, int64) {
	return r.entityType, r.entityID
}

func (r Ref) String() string {
	if r.IsVirtual() {
		return fmt.Sprintf("virtual(%s/%d)", r.entityType, r.entityID)
	}
	return fmt.Sprintf("persistent(%d)", r.persistentID)
}

// ParseRef decodes a wire id into a Ref. Positive ids are persistent row ids;
// negative ids are virtual encodings: -entityID for students,
// -(entityID+staffOffset) for staff.
func ParseRef(wireID int64) (Ref, error) {
	switch {
	case wireID > 0:
		return PersistentRef(wireID), nil
	case wireID < 0:
		n := -wireID
		if n > staffOffset {
			return VirtualRef(EntityStaff, n-staffOffset), nil
		}
		return VirtualRef(EntityStudent, n), nil
	default:
		return Ref{}, platformerrors.NewValidation(platformerrors.LayerDomain, "identity id must be non-zero")
	}
}

// EncodeVirtual produces the wire id for a virtual reference. It is the exact
// inverse of ParseRef for negative ids.
func EncodeVirtual(entityType EntityType, entityID int64) (int64, error) {
	if entityID <= 0 {
		return 0, platformerrors.NewValidation(platformerrors.LayerDomain, "entity id must be positive")
	}
	switch entityType {
	case EntityStudent:
		if entityID > staffOffset {
			return 0, platformerrors.NewValidation(platformerrors.LayerDomain, "student entity id out of encodable range")
		}
		return -entityID, nil
	case EntityStaff:
		if entityID >= staffOffset {
			return 0, platformerrors.NewValidation(platformerrors.LayerDomain, "staff entity id out of encodable range")
		}
		return -(entityID + staffOffset), nil
	default:
		return 0, platformerrors.NewValidation(platformerrors.LayerDomain, fmt.Sprintf("unknown entity type %q", entityType))
	}
}
