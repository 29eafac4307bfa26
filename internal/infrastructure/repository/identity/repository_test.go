package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/infrastructure/database/entities"
	repo "campus-chat/chat-api/internal/infrastructure/repository/identity"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

func setup(t *testing.T) *repo.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.ChatIdentity{}))
	return repo.NewRepository(db)
}

func TestCreateAndFindByEntity(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	ident := &domain.Identity{
		EntityType:  domain.EntityStudent,
		EntityID:    1335,
		DisplayName: "Ada Obi",
		Email:       "ada@campus.edu",
		Role:        permission.RoleStudent,
	}
	require.NoError(t, r.Create(ctx, ident))
	require.NotZero(t, ident.ID)

	found, err := r.FindByEntity(ctx, domain.EntityStudent, 1335)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, ident.ID, found.ID)
	require.Equal(t, "Ada Obi", found.DisplayName)
}

func TestCreateDuplicateYieldsConflict(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	first := &domain.Identity{EntityType: domain.EntityStaff, EntityID: 12, DisplayName: "Dr. Bello", Role: permission.RoleLecturer}
	require.NoError(t, r.Create(ctx, first))

	dup := &domain.Identity{EntityType: domain.EntityStaff, EntityID: 12, DisplayName: "Dr. Bello", Role: permission.RoleLecturer}
	err := r.Create(ctx, dup)
	require.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeConflict), "got %v", err)
}

func TestFindByEntityAbsentReturnsNil(t *testing.T) {
	r := setup(t)
	found, err := r.FindByEntity(context.Background(), domain.EntityStudent, 999)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestFindByIDAbsentReturnsNotFound(t *testing.T) {
	r := setup(t)
	_, err := r.FindByID(context.Background(), 404)
	require.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeNotFound), "got %v", err)
}

func TestSetOnlineStampsLastSeenOnlyWhenGoingOffline(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	ident := &domain.Identity{EntityType: domain.EntityStudent, EntityID: 1, DisplayName: "A", Role: permission.RoleStudent}
	require.NoError(t, r.Create(ctx, ident))

	require.NoError(t, r.SetOnline(ctx, ident.ID, true, time.Now()))
	online, err := r.FindByID(ctx, ident.ID)
	require.NoError(t, err)
	require.True(t, online.IsOnline)
	require.Nil(t, online.LastSeen)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.SetOnline(ctx, ident.ID, false, at))
	offline, err := r.FindByID(ctx, ident.ID)
	require.NoError(t, err)
	require.False(t, offline.IsOnline)
	require.NotNil(t, offline.LastSeen)
}

func TestUpdateRole(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	ident := &domain.Identity{EntityType: domain.EntityStaff, EntityID: 1, DisplayName: "Root", Role: permission.RoleAdmin}
	require.NoError(t, r.Create(ctx, ident))
	require.NoError(t, r.UpdateRole(ctx, ident.ID, permission.RoleSuperAdmin))

	found, err := r.FindByID(ctx, ident.ID)
	require.NoError(t, err)
	require.Equal(t, permission.RoleSuperAdmin, found.Role)
}

func TestSearchMatchesNameAndEmail(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	for i, ident := range []*domain.Identity{
		{EntityType: domain.EntityStudent, EntityID: 1, DisplayName: "Ada Obi", Email: "ada@campus.edu"},
		{EntityType: domain.EntityStudent, EntityID: 2, DisplayName: "Bisi Ade", Email: "bisi@campus.edu"},
		{EntityType: domain.EntityStaff, EntityID: 3, DisplayName: "Dr. Bello", Email: "bello@campus.edu"},
	} {
		ident.Role = permission.RoleStudent
		require.NoError(t, r.Create(ctx, ident), "seed %d", i)
	}

	byName, err := r.Search(ctx, "Ada", 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "Ada Obi", byName[0].DisplayName)

	byEmail, err := r.Search(ctx, "bello@", 10)
	require.NoError(t, err)
	require.Len(t, byEmail, 1)

	limited, err := r.Search(ctx, "campus.edu", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}
