package identity

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// Resolver materializes record references into chat identities.
type Resolver interface {
	// Resolve returns the identity for a record reference, provisioning it
	// on first touch. Safe under concurrent first-call: a lost insert race is
	// converged by re-reading the winner's row.
	Resolve(ctx context.Context, entityType EntityType, entityID int64) (*Identity, error)

	// ResolveRef resolves a Ref, materializing virtual references.
	ResolveRef(ctx context.Context, ref Ref) (*Identity, error)

	// Get returns an already-provisioned identity by row id.
	Get(ctx context.Context, id int64) (*Identity, error)

	// Promote escalates the identity to super admin when its email is on the
	// allow-list. One-way: it never demotes.
	Promote(ctx context.Context, ident *Identity) error

	// Search finds provisioned identities by display name or email.
	Search(ctx context.Context, query string, limit int) ([]Identity, error)
}

type resolver struct {
	repo    Repository
	records RecordsDirectory
	// lowercase allow-list of super-admin emails
	superAdmins map[string]bool
	log         zerolog.Logger
}

// NewResolver creates an identity resolver.
func NewResolver(repo Repository, records RecordsDirectory, superAdminEmails []string, log zerolog.Logger) Resolver {
	superAdmins := make(map[string]bool, len(superAdminEmails))
	for _, e := range superAdminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			superAdmins[e] = true
		}
	}
	return &resolver{
		repo:        repo,
		records:     records,
		superAdmins: superAdmins,
		log:         log.With().Str("component", "identity-resolver").Logger(),
	}
}

func (r *resolver) Resolve(ctx context.Context, entityType EntityType, entityID int64) (*Identity, error) {
	if entityType != EntityStudent && entityType != EntityStaff {
		return nil, platformerrors.NewValidation(platformerrors.LayerDomain, "unknown entity type")
	}

	existing, err := r.repo.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	record, err := r.records.Lookup(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	ident := &Identity{
		EntityType:  entityType,
		EntityID:    entityID,
		DisplayName: record.DisplayName,
		Email:       record.Email,
		Role:        record.Role,
	}
	err = r.repo.Create(ctx, ident)
	if err == nil {
		r.log.Info().
			Str("entity_type", string(entityType)).
			Int64("entity_id", entityID).
			Int64("identity_id", ident.ID).
			Msg("identity provisioned")
		return ident, nil
	}

	// A concurrent first-touch lost the insert race. The unique index on
	// (entity_type, entity_id) guarantees exactly one row exists, so converge
	// on the winner.
	if platformerrors.IsType(err, platformerrors.ErrorTypeConflict) {
		winner, findErr := r.repo.FindByEntity(ctx, entityType, entityID)
		if findErr != nil {
			return nil, findErr
		}
		if winner != nil {
			return winner, nil
		}
		return nil, platformerrors.NewConflict(platformerrors.LayerDomain,
			"identity provisioning conflict did not converge", err)
	}
	return nil, err
}

func (r *resolver) ResolveRef(ctx context.Context, ref Ref) (*Identity, error) {
	if ref.IsVirtual() {
		entityType, entityID := ref.Entity()
		return r.Resolve(ctx, entityType, entityID)
	}
	return r.repo.FindByID(ctx, ref.PersistentID())
}

func (r *resolver) Get(ctx context.Context, id int64) (*Identity, error) {
	return r.repo.FindByID(ctx, id)
}

func (r *resolver) Promote(ctx context.Context, ident *Identity) error {
	if ident.Role == permission.RoleSuperAdmin {
		return nil
	}
	if !r.superAdmins[strings.ToLower(ident.Email)] {
		return nil
	}
	if err := r.repo.UpdateRole(ctx, ident.ID, permission.RoleSuperAdmin); err != nil {
		return err
	}
	ident.Role = permission.RoleSuperAdmin
	r.log.Info().Int64("identity_id", ident.ID).Msg("identity promoted to super admin")
	return nil
}

func (r *resolver) Search(ctx context.Context, query string, limit int) ([]Identity, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, platformerrors.NewValidation(platformerrors.LayerDomain, "search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return r.repo.Search(ctx, query, limit)
}
