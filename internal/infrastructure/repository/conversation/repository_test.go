package conversation_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/infrastructure/database/entities"
	repo "campus-chat/chat-api/internal/infrastructure/repository/conversation"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

func setup(t *testing.T) (*repo.Repository, *repo.ParticipantRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Conversation{}, &entities.Participant{}))
	return repo.NewRepository(db), repo.NewParticipantRepository(db)
}

func TestCreateDirectDedupConflict(t *testing.T) {
	convs, _ := setup(t)
	ctx := context.Background()

	first := &domain.Conversation{Type: domain.TypeDirect, Scope: domain.ScopePrivate}
	require.NoError(t, convs.Create(ctx, first, "d:3:9"))
	require.NotZero(t, first.ID)

	second := &domain.Conversation{Type: domain.TypeDirect, Scope: domain.ScopePrivate}
	err := convs.Create(ctx, second, "d:3:9")
	require.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeConflict), "got %v", err)
}

func TestEmptyDedupKeyAllowsManyGroups(t *testing.T) {
	convs, _ := setup(t)
	ctx := context.Background()

	// Private groups carry no dedup key; a NULL key must not collide.
	for _, name := range []string{"Project Alpha", "Project Beta"} {
		conv := &domain.Conversation{Type: domain.TypeGroup, Scope: domain.ScopePrivate, Name: name}
		require.NoError(t, convs.Create(ctx, conv, ""))
	}
}

func TestFindByKey(t *testing.T) {
	convs, _ := setup(t)
	ctx := context.Background()

	created := &domain.Conversation{Type: domain.TypeGroup, Scope: domain.ScopeDepartment, Name: "Computer Science (CSC)"}
	require.NoError(t, convs.Create(ctx, created, "g:department:Computer Science (CSC)"))

	found, err := convs.FindByKey(ctx, "g:department:Computer Science (CSC)")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, domain.ScopeDepartment, found.Scope)

	missing, err := convs.FindByKey(ctx, "g:department:Physics (PHY)")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestFindByIDAbsent(t *testing.T) {
	convs, _ := setup(t)
	_, err := convs.FindByID(context.Background(), 404)
	require.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeNotFound), "got %v", err)
}

func TestListByIdentityOrdersByActivity(t *testing.T) {
	convs, parts := setup(t)
	ctx := context.Background()

	old := &domain.Conversation{Type: domain.TypeGroup, Scope: domain.ScopePrivate, Name: "Old"}
	require.NoError(t, convs.Create(ctx, old, ""))
	busy := &domain.Conversation{Type: domain.TypeGroup, Scope: domain.ScopePrivate, Name: "Busy"}
	require.NoError(t, convs.Create(ctx, busy, ""))
	other := &domain.Conversation{Type: domain.TypeGroup, Scope: domain.ScopePrivate, Name: "Not mine"}
	require.NoError(t, convs.Create(ctx, other, ""))

	for _, id := range []int64{old.ID, busy.ID} {
		require.NoError(t, parts.Add(ctx, &domain.Participant{ConversationID: id, IdentityID: 7, Role: permission.ParticipantMember}))
	}
	require.NoError(t, parts.Add(ctx, &domain.Participant{ConversationID: other.ID, IdentityID: 8, Role: permission.ParticipantMember}))

	require.NoError(t, convs.Touch(ctx, busy.ID, time.Now().Add(time.Hour)))
	require.NoError(t, convs.Touch(ctx, old.ID, time.Now().Add(-time.Hour)))

	listed, err := convs.ListByIdentity(ctx, 7)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "Busy", listed[0].Name)
	require.Equal(t, "Old", listed[1].Name)
}

func TestParticipantAddDuplicateConflict(t *testing.T) {
	convs, parts := setup(t)
	ctx := context.Background()

	conv := &domain.Conversation{Type: domain.TypeGroup, Scope: domain.ScopePrivate, Name: "G"}
	require.NoError(t, convs.Create(ctx, conv, ""))

	adder := int64(3)
	p := &domain.Participant{ConversationID: conv.ID, IdentityID: 7, Role: permission.ParticipantMember, AddedByIdentityID: &adder}
	require.NoError(t, parts.Add(ctx, p))
	require.NotZero(t, p.ID)

	dup := &domain.Participant{ConversationID: conv.ID, IdentityID: 7, Role: permission.ParticipantMember}
	err := parts.Add(ctx, dup)
	require.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeConflict), "got %v", err)
}

func TestParticipantFindAbsentReturnsNil(t *testing.T) {
	_, parts := setup(t)
	found, err := parts.Find(context.Background(), 1, 99)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestParticipantRemoveAndUpdateRole(t *testing.T) {
	convs, parts := setup(t)
	ctx := context.Background()

	conv := &domain.Conversation{Type: domain.TypeGroup, Scope: domain.ScopePrivate, Name: "G"}
	require.NoError(t, convs.Create(ctx, conv, ""))
	require.NoError(t, parts.Add(ctx, &domain.Participant{ConversationID: conv.ID, IdentityID: 7, Role: permission.ParticipantMember}))
	require.NoError(t, parts.Add(ctx, &domain.Participant{ConversationID: conv.ID, IdentityID: 8, Role: permission.ParticipantAdmin}))

	require.NoError(t, parts.UpdateRole(ctx, conv.ID, 7, permission.ParticipantCoAdmin))
	promoted, err := parts.Find(ctx, conv.ID, 7)
	require.NoError(t, err)
	require.Equal(t, permission.ParticipantCoAdmin, promoted.Role)

	require.NoError(t, parts.Remove(ctx, conv.ID, 7))
	gone, err := parts.Find(ctx, conv.ID, 7)
	require.NoError(t, err)
	require.Nil(t, gone)

	ids, err := parts.IdentityIDs(ctx, conv.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{8}, ids)
}
