// Package autogroup derives standing group memberships (global, level,
// department, combined) from academic attributes and keeps them in sync.
// Syncing is idempotent: a second run joins nothing new.
package autogroup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

const (
	groupAllStudents = "All Students"
	groupAllStaff    = "All Staff"
)

// DepartmentDirectory resolves department codes to human names. Unregistered
// codes yield NOT_FOUND; callers fall back to the code itself.
type DepartmentDirectory interface {
	DepartmentName(ctx context.Context, code string) (string, error)
}

// Syncer maintains the standing group memberships of an identity.
type Syncer struct {
	convs   *conversation.Store
	records identity.RecordsDirectory
	depts   DepartmentDirectory
	log     zerolog.Logger
}

// NewSyncer creates an auto-group syncer.
func NewSyncer(convs *conversation.Store, records identity.RecordsDirectory, depts DepartmentDirectory, log zerolog.Logger) *Syncer {
	return &Syncer{
		convs:   convs,
		records: records,
		depts:   depts,
		log:     log.With().Str("component", "autogroup-sync").Logger(),
	}
}

// Sync joins the identity into its standing groups. Staff join only the
// global staff group. Students join, in order, the global group, the level
// group, the department group and the combined group; a missing level or an
// unparseable matric identifier skips the dependent groups without raising an
// error to the caller.
func (s *Syncer) Sync(ctx context.Context, ident *identity.Identity) error {
	if ident.EntityType == identity.EntityStaff {
		_, err := s.convs.EnsureGroupAndJoin(ctx, groupAllStaff, conversation.ScopeGlobal, ident.ID)
		return err
	}

	if _, err := s.convs.EnsureGroupAndJoin(ctx, groupAllStudents, conversation.ScopeGlobal, ident.ID); err != nil {
		return err
	}

	record, err := s.records.Lookup(ctx, identity.EntityStudent, ident.EntityID)
	if err != nil {
		if platformerrors.IsType(err, platformerrors.ErrorTypeNotFound) {
			s.log.Warn().Int64("identity_id", ident.ID).Msg("student record missing, skipping derived groups")
			return nil
		}
		return err
	}

	if record.Level <= 0 {
		s.log.Info().Int64("identity_id", ident.ID).Msg("student has no level, skipping level groups")
	}

	deptCode, ok := ParseDepartmentCode(record.MatricNumber)
	if !ok {
		s.log.Info().Int64("identity_id", ident.ID).Str("matric", record.MatricNumber).Msg("matric identifier not parseable, skipping department groups")
	}

	if record.Level > 0 {
		name := fmt.Sprintf("%d Level", record.Level)
		if _, err := s.convs.EnsureGroupAndJoin(ctx, name, conversation.ScopeLevel, ident.ID); err != nil {
			return err
		}
	}

	if ok {
		deptName := s.departmentName(ctx, deptCode)

		groupName := deptName
		if deptName != deptCode {
			groupName = fmt.Sprintf("%s (%s)", deptName, deptCode)
		}
		if _, err := s.convs.EnsureGroupAndJoin(ctx, groupName, conversation.ScopeDepartment, ident.ID); err != nil {
			return err
		}

		if record.Level > 0 {
			combined := fmt.Sprintf("%d Level %s", record.Level, deptName)
			if _, err := s.convs.EnsureGroupAndJoin(ctx, combined, conversation.ScopeCombined, ident.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Syncer) departmentName(ctx context.Context, code string) string {
	name, err := s.depts.DepartmentName(ctx, code)
	if err != nil {
		if !platformerrors.IsType(err, platformerrors.ErrorTypeNotFound) {
			s.log.Warn().Err(err).Str("dept_code", code).Msg("department lookup failed, falling back to code")
		}
		return code
	}
	return name
}

// ParseDepartmentCode extracts the department code from a slash-delimited
// matric identifier ("VUG/CSC/16/1335" -> "CSC").
func ParseDepartmentCode(matric string) (string, bool) {
	parts := strings.Split(matric, "/")
	if len(parts) < 2 {
		return "", false
	}
	code := strings.ToUpper(strings.TrimSpace(parts[1]))
	if code == "" {
		return "", false
	}
	return code, true
}
