// Package records is the read-only collaborator over the pre-existing
// academic records database. The chat service never writes these tables.
package records

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// Student is the academic student record.
type Student struct {
	ID           int64  `gorm:"primaryKey"`
	FullName     string `gorm:"type:varchar(120);not null"`
	Email        string `gorm:"type:varchar(190)"`
	Level        int
	MatricNumber string `gorm:"type:varchar(40);uniqueIndex"`
	CreatedAt    time.Time
}

func (Student) TableName() string {
	return "students"
}

// Staff is the academic staff record. Role carries the administrative rank
// (LECTURER, HOD, DEAN, ADMIN).
type Staff struct {
	ID        int64  `gorm:"primaryKey"`
	FullName  string `gorm:"type:varchar(120);not null"`
	Email     string `gorm:"type:varchar(190)"`
	Role      string `gorm:"type:varchar(32);not null;default:'LECTURER'"`
	CreatedAt time.Time
}

func (Staff) TableName() string {
	return "staffs"
}

// Department maps a department code to its human name.
type Department struct {
	ID   int64  `gorm:"primaryKey"`
	Code string `gorm:"type:varchar(16);uniqueIndex;not null"`
	Name string `gorm:"type:varchar(120);not null"`
}

func (Department) TableName() string {
	return "departments"
}

// Directory reads the academic records schema. It implements both the
// identity records lookup and the auto-group department lookup.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Lookup fetches the display attributes for a record.
func (d *Directory) Lookup(ctx context.Context, entityType identity.EntityType, entityID int64) (*identity.EntityRecord, error) {
	switch entityType {
	case identity.EntityStudent:
		var s Student
		err := d.db.WithContext(ctx).Where("id = ?", entityID).First(&s).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, platformerrors.NewNotFound(platformerrors.LayerInfrastructure, "student record not found", err)
			}
			return nil, platformerrors.NewDatabase("failed to look up student record", err)
		}
		return &identity.EntityRecord{
			DisplayName:  s.FullName,
			Email:        s.Email,
			Role:         permission.RoleStudent,
			Level:        s.Level,
			MatricNumber: s.MatricNumber,
		}, nil
	case identity.EntityStaff:
		var s Staff
		err := d.db.WithContext(ctx).Where("id = ?", entityID).First(&s).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, platformerrors.NewNotFound(platformerrors.LayerInfrastructure, "staff record not found", err)
			}
			return nil, platformerrors.NewDatabase("failed to look up staff record", err)
		}
		role := permission.Role(s.Role)
		if role == "" {
			role = permission.RoleLecturer
		}
		return &identity.EntityRecord{
			DisplayName: s.FullName,
			Email:       s.Email,
			Role:        role,
		}, nil
	default:
		return nil, platformerrors.NewValidation(platformerrors.LayerInfrastructure, "unknown entity type")
	}
}

// DepartmentName resolves a department code to its registered name.
func (d *Directory) DepartmentName(ctx context.Context, code string) (string, error) {
	var dept Department
	err := d.db.WithContext(ctx).Where("code = ?", code).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", platformerrors.NewNotFound(platformerrors.LayerInfrastructure, "department not registered", err)
		}
		return "", platformerrors.NewDatabase("failed to look up department", err)
	}
	return dept.Name, nil
}

// AutoMigrate creates the records tables. Used by tests and local
// development; production points at the existing records database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Student{}, &Staff{}, &Department{})
}
