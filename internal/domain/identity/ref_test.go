package identity_test

import (
	"testing"

	"campus-chat/chat-api/internal/domain/identity"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name       string
		wireID     int64
		wantErr    bool
		wantEntity identity.EntityType
		wantID     int64
	}{
		{name: "positive is persistent", wireID: 42, wantID: 42},
		{name: "small negative is virtual student", wireID: -1335, wantEntity: identity.EntityStudent, wantID: 1335},
		{name: "student boundary", wireID: -100000, wantEntity: identity.EntityStudent, wantID: 100000},
		{name: "first staff encoding", wireID: -100001, wantEntity: identity.EntityStaff, wantID: 1},
		{name: "larger staff encoding", wireID: -100250, wantEntity: identity.EntityStaff, wantID: 250},
		{name: "zero is invalid", wireID: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := identity.ParseRef(tt.wireID)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRef(%d) expected error, got %v", tt.wireID, ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRef(%d) unexpected error: %v", tt.wireID, err)
			}
			if tt.wireID > 0 {
				if ref.IsVirtual() {
					t.Fatalf("ParseRef(%d) should be persistent", tt.wireID)
				}
				if got := ref.PersistentID(); got != tt.wantID {
					t.Errorf("PersistentID() = %d, want %d", got, tt.wantID)
				}
				return
			}
			if !ref.IsVirtual() {
				t.Fatalf("ParseRef(%d) should be virtual", tt.wireID)
			}
			entityType, entityID := ref.Entity()
			if entityType != tt.wantEntity || entityID != tt.wantID {
				t.Errorf("Entity() = (%s, %d), want (%s, %d)", entityType, entityID, tt.wantEntity, tt.wantID)
			}
		})
	}
}

func TestEncodeVirtualRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		entityType identity.EntityType
		entityID   int64
		want       int64
	}{
		{name: "student", entityType: identity.EntityStudent, entityID: 1335, want: -1335},
		{name: "student at boundary", entityType: identity.EntityStudent, entityID: 100000, want: -100000},
		{name: "staff", entityType: identity.EntityStaff, entityID: 1, want: -100001},
		{name: "staff mid range", entityType: identity.EntityStaff, entityID: 7500, want: -107500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wireID, err := identity.EncodeVirtual(tt.entityType, tt.entityID)
			if err != nil {
				t.Fatalf("EncodeVirtual(%s, %d) unexpected error: %v", tt.entityType, tt.entityID, err)
			}
			if wireID != tt.want {
				t.Errorf("EncodeVirtual(%s, %d) = %d, want %d", tt.entityType, tt.entityID, wireID, tt.want)
			}

			ref, err := identity.ParseRef(wireID)
			if err != nil {
				t.Fatalf("ParseRef(%d) unexpected error: %v", wireID, err)
			}
			entityType, entityID := ref.Entity()
			if entityType != tt.entityType || entityID != tt.entityID {
				t.Errorf("round trip = (%s, %d), want (%s, %d)", entityType, entityID, tt.entityType, tt.entityID)
			}
		})
	}
}

func TestEncodeVirtualRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name       string
		entityType identity.EntityType
		entityID   int64
	}{
		{name: "zero student", entityType: identity.EntityStudent, entityID: 0},
		{name: "negative student", entityType: identity.EntityStudent, entityID: -5},
		{name: "student beyond range", entityType: identity.EntityStudent, entityID: 100001},
		{name: "staff beyond range", entityType: identity.EntityStaff, entityID: 100000},
		{name: "unknown entity type", entityType: identity.EntityType("course"), entityID: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := identity.EncodeVirtual(tt.entityType, tt.entityID); err == nil {
				t.Errorf("EncodeVirtual(%s, %d) expected error", tt.entityType, tt.entityID)
			}
		})
	}
}
