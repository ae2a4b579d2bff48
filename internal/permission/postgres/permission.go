package postgres

import (
	"errors"
	"time"

	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	userDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/user"
	"github.com/servicehub/admin-backend/internal/permission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PermissionRepository implements permission.Repository using GORM. Absent
// rows are reported as (nil, nil): absence is a normal resolution outcome,
// not an error.
type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.Repository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetUserPermission(userID, moduleID int64) (*userDatamodel.UserPermission, error) {
	var row userDatamodel.UserPermission
	err := r.db.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PermissionRepository) GetRolePermission(roleID, moduleID int64) (*roleDatamodel.RolePermission, error) {
	var row roleDatamodel.RolePermission
	err := r.db.Where("role_id = ? AND module_id = ?", roleID, moduleID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PermissionRepository) ListUserPermissions(userID int64) ([]userDatamodel.UserPermission, error) {
	var rows []userDatamodel.UserPermission
	err := r.db.Where("user_id = ?", userID).Order("module_id ASC").Find(&rows).Error
	return rows, err
}

func (r *PermissionRepository) ListRolePermissions(roleID int64) ([]roleDatamodel.RolePermission, error) {
	var rows []roleDatamodel.RolePermission
	err := r.db.Where("role_id = ?", roleID).Order("module_id ASC").Find(&rows).Error
	return rows, err
}

// ReplaceRolePermissions swaps the role's full grant set in one transaction:
// either every old row is gone and every new row present, or nothing changed.
func (r *PermissionRepository) ReplaceRolePermissions(roleID int64, rows []roleDatamodel.RolePermission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// UpsertUserPermission writes the override row, overwriting capabilities on
// conflict with the (user_id, module_id) key.
func (r *PermissionRepository) UpsertUserPermission(row *userDatamodel.UserPermission) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"can_view":   row.CanView,
			"can_add":    row.CanAdd,
			"can_edit":   row.CanEdit,
			"can_delete": row.CanDelete,
			"updated_at": time.Now(),
		}),
	}).Create(row).Error
}

func (r *PermissionRepository) DeleteUserPermission(userID, moduleID int64) error {
	return r.db.Where("user_id = ? AND module_id = ?", userID, moduleID).
		Delete(&userDatamodel.UserPermission{}).Error
}

func (r *PermissionRepository) GetModuleByName(name string) (*moduleDatamodel.Module, error) {
	var m moduleDatamodel.Module
	err := r.db.Where("name = ?", name).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *PermissionRepository) GetModuleByID(id int64) (*moduleDatamodel.Module, error) {
	var m moduleDatamodel.Module
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *PermissionRepository) ListModules() ([]moduleDatamodel.Module, error) {
	var modules []moduleDatamodel.Module
	err := r.db.Order("id ASC").Find(&modules).Error
	return modules, err
}

func (r *PermissionRepository) GetRoleByID(roleID int64) (*roleDatamodel.Role, error) {
	var role roleDatamodel.Role
	err := r.db.Where("id = ?", roleID).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}
