package autogroup_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/autogroup"
	"campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

type memConvRepo struct {
	byID   map[int64]*conversation.Conversation
	byKey  map[string]int64
	nextID int64
}

func newMemConvRepo() *memConvRepo {
	return &memConvRepo{
		byID:  make(map[int64]*conversation.Conversation),
		byKey: make(map[string]int64),
	}
}

func (r *memConvRepo) Create(_ context.Context, conv *conversation.Conversation, dedupKey string) error {
	if dedupKey != "" {
		if _, exists := r.byKey[dedupKey]; exists {
			return platformerrors.NewConflict(platformerrors.LayerRepository, "conversation already exists", nil)
		}
	}
	r.nextID++
	conv.ID = r.nextID
	stored := *conv
	r.byID[conv.ID] = &stored
	if dedupKey != "" {
		r.byKey[dedupKey] = conv.ID
	}
	return nil
}

func (r *memConvRepo) FindByID(_ context.Context, id int64) (*conversation.Conversation, error) {
	conv, ok := r.byID[id]
	if !ok {
		return nil, platformerrors.NewNotFound(platformerrors.LayerRepository, "conversation not found", nil)
	}
	out := *conv
	return &out, nil
}

func (r *memConvRepo) FindByKey(_ context.Context, key string) (*conversation.Conversation, error) {
	id, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *memConvRepo) Touch(_ context.Context, _ int64, _ time.Time) error { return nil }

func (r *memConvRepo) ListByIdentity(_ context.Context, _ int64) ([]conversation.Conversation, error) {
	return nil, nil
}

type memPartRepo struct {
	parts []*conversation.Participant
}

func (r *memPartRepo) Add(_ context.Context, p *conversation.Participant) error {
	for _, existing := range r.parts {
		if existing.ConversationID == p.ConversationID && existing.IdentityID == p.IdentityID {
			return platformerrors.NewConflict(platformerrors.LayerRepository, "already a participant", nil)
		}
	}
	stored := *p
	r.parts = append(r.parts, &stored)
	return nil
}

func (r *memPartRepo) Find(_ context.Context, conversationID, identityID int64) (*conversation.Participant, error) {
	for _, p := range r.parts {
		if p.ConversationID == conversationID && p.IdentityID == identityID {
			out := *p
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memPartRepo) ListByConversation(_ context.Context, conversationID int64) ([]conversation.Participant, error) {
	var out []conversation.Participant
	for _, p := range r.parts {
		if p.ConversationID == conversationID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPartRepo) IdentityIDs(_ context.Context, conversationID int64) ([]int64, error) {
	var out []int64
	for _, p := range r.parts {
		if p.ConversationID == conversationID {
			out = append(out, p.IdentityID)
		}
	}
	return out, nil
}

func (r *memPartRepo) Remove(_ context.Context, _, _ int64) error { return nil }

func (r *memPartRepo) UpdateRole(_ context.Context, _, _ int64, _ permission.ParticipantRole) error {
	return nil
}

func (r *memPartRepo) membershipsOf(identityID int64) int {
	n := 0
	for _, p := range r.parts {
		if p.IdentityID == identityID {
			n++
		}
	}
	return n
}

type noopResolver struct{}

func (noopResolver) Resolve(_ context.Context, _ identity.EntityType, _ int64) (*identity.Identity, error) {
	return nil, platformerrors.NewNotFound(platformerrors.LayerDomain, "not supported", nil)
}

func (noopResolver) ResolveRef(_ context.Context, _ identity.Ref) (*identity.Identity, error) {
	return nil, platformerrors.NewNotFound(platformerrors.LayerDomain, "not supported", nil)
}

func (noopResolver) Get(_ context.Context, _ int64) (*identity.Identity, error) {
	return nil, platformerrors.NewNotFound(platformerrors.LayerDomain, "not supported", nil)
}

func (noopResolver) Promote(_ context.Context, _ *identity.Identity) error { return nil }

func (noopResolver) Search(_ context.Context, _ string, _ int) ([]identity.Identity, error) {
	return nil, nil
}

type stubRecords struct {
	records map[int64]*identity.EntityRecord
}

func (s *stubRecords) Lookup(_ context.Context, entityType identity.EntityType, entityID int64) (*identity.EntityRecord, error) {
	if entityType != identity.EntityStudent {
		return nil, platformerrors.NewNotFound(platformerrors.LayerInfrastructure, "record not found", nil)
	}
	rec, ok := s.records[entityID]
	if !ok {
		return nil, platformerrors.NewNotFound(platformerrors.LayerInfrastructure, "record not found", nil)
	}
	return rec, nil
}

type stubDepts struct {
	names map[string]string
}

func (s *stubDepts) DepartmentName(_ context.Context, code string) (string, error) {
	name, ok := s.names[code]
	if !ok {
		return "", platformerrors.NewNotFound(platformerrors.LayerInfrastructure, "department not found", nil)
	}
	return name, nil
}

type fixture struct {
	syncer *autogroup.Syncer
	convs  *memConvRepo
	parts  *memPartRepo
}

func newFixture(records map[int64]*identity.EntityRecord, deptNames map[string]string) *fixture {
	convs := newMemConvRepo()
	parts := &memPartRepo{}
	store := conversation.NewStore(convs, parts, noopResolver{},
		permission.NewEngine([]string{"DEAN", "ADMIN", "SUPER_ADMIN"}), zerolog.Nop())
	syncer := autogroup.NewSyncer(store, &stubRecords{records: records}, &stubDepts{names: deptNames}, zerolog.Nop())
	return &fixture{syncer: syncer, convs: convs, parts: parts}
}

func (f *fixture) groupNames() map[string]conversation.Scope {
	out := make(map[string]conversation.Scope)
	for _, conv := range f.convs.byID {
		out[conv.Name] = conv.Scope
	}
	return out
}

func TestSyncStudentJoinsAllFourGroups(t *testing.T) {
	f := newFixture(map[int64]*identity.EntityRecord{
		1335: {DisplayName: "Ada Obi", Level: 300, MatricNumber: "VUG/CSC/16/1335"},
	}, map[string]string{"CSC": "Computer Science"})

	ident := &identity.Identity{ID: 5, EntityType: identity.EntityStudent, EntityID: 1335, Role: permission.RoleStudent}
	if err := f.syncer.Sync(context.Background(), ident); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	groups := f.groupNames()
	want := map[string]conversation.Scope{
		"All Students":               conversation.ScopeGlobal,
		"300 Level":                  conversation.ScopeLevel,
		"Computer Science (CSC)":     conversation.ScopeDepartment,
		"300 Level Computer Science": conversation.ScopeCombined,
	}
	if len(groups) != len(want) {
		t.Fatalf("created groups %v, want %v", groups, want)
	}
	for name, scope := range want {
		if groups[name] != scope {
			t.Errorf("group %q scope = %s, want %s", name, groups[name], scope)
		}
	}
	if got := f.parts.membershipsOf(ident.ID); got != 4 {
		t.Errorf("memberships = %d, want 4", got)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(map[int64]*identity.EntityRecord{
		1335: {Level: 300, MatricNumber: "VUG/CSC/16/1335"},
	}, map[string]string{"CSC": "Computer Science"})

	ident := &identity.Identity{ID: 5, EntityType: identity.EntityStudent, EntityID: 1335}
	for i := 0; i < 3; i++ {
		if err := f.syncer.Sync(context.Background(), ident); err != nil {
			t.Fatalf("Sync #%d: %v", i+1, err)
		}
	}
	if got := len(f.convs.byID); got != 4 {
		t.Errorf("conversations = %d, want 4", got)
	}
	if got := f.parts.membershipsOf(ident.ID); got != 4 {
		t.Errorf("memberships = %d, want 4 after resync", got)
	}
}

func TestSyncStaffJoinsStaffGroupOnly(t *testing.T) {
	f := newFixture(nil, nil)

	ident := &identity.Identity{ID: 9, EntityType: identity.EntityStaff, EntityID: 12, Role: permission.RoleLecturer}
	if err := f.syncer.Sync(context.Background(), ident); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	groups := f.groupNames()
	if len(groups) != 1 || groups["All Staff"] != conversation.ScopeGlobal {
		t.Errorf("groups = %v, want only the global staff group", groups)
	}
}

func TestSyncUnknownDepartmentFallsBackToCode(t *testing.T) {
	f := newFixture(map[int64]*identity.EntityRecord{
		77: {Level: 200, MatricNumber: "VUG/ENG/19/0077"},
	}, nil)

	ident := &identity.Identity{ID: 7, EntityType: identity.EntityStudent, EntityID: 77}
	if err := f.syncer.Sync(context.Background(), ident); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	groups := f.groupNames()
	// Name equals code, so the department group carries the bare code.
	if scope, ok := groups["ENG"]; !ok || scope != conversation.ScopeDepartment {
		t.Errorf("groups = %v, want bare-code department group", groups)
	}
	if scope, ok := groups["200 Level ENG"]; !ok || scope != conversation.ScopeCombined {
		t.Errorf("groups = %v, want combined group from code fallback", groups)
	}
}

func TestSyncMissingRecordStopsAfterGlobal(t *testing.T) {
	f := newFixture(nil, nil)

	ident := &identity.Identity{ID: 3, EntityType: identity.EntityStudent, EntityID: 404}
	if err := f.syncer.Sync(context.Background(), ident); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	groups := f.groupNames()
	if len(groups) != 1 || groups["All Students"] != conversation.ScopeGlobal {
		t.Errorf("groups = %v, want only the global student group", groups)
	}
}

func TestSyncUnparseableMatricSkipsDepartmentGroups(t *testing.T) {
	f := newFixture(map[int64]*identity.EntityRecord{
		88: {Level: 100, MatricNumber: "NOMATRIC"},
	}, nil)

	ident := &identity.Identity{ID: 8, EntityType: identity.EntityStudent, EntityID: 88}
	if err := f.syncer.Sync(context.Background(), ident); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	groups := f.groupNames()
	if len(groups) != 2 {
		t.Errorf("groups = %v, want global and level only", groups)
	}
}

func TestParseDepartmentCode(t *testing.T) {
	tests := []struct {
		matric string
		want   string
		ok     bool
	}{
		{"VUG/CSC/16/1335", "CSC", true},
		{"vug/csc/16/1335", "CSC", true},
		{"VUG/ eng /19/0077", "ENG", true},
		{"NOMATRIC", "", false},
		{"VUG/", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.matric, func(t *testing.T) {
			got, ok := autogroup.ParseDepartmentCode(tt.matric)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseDepartmentCode(%q) = (%q, %v), want (%q, %v)", tt.matric, got, ok, tt.want, tt.ok)
			}
		})
	}
}
