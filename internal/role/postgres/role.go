package postgres

import (
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	userDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/user"
	"github.com/servicehub/admin-backend/internal/role"
	"gorm.io/gorm"
)

// RoleRepository implements the role.Repository interface using GORM.
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.Repository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(id int64) (*roleDatamodel.Role, error) {
	var rec roleDatamodel.Role
	err := r.db.Where("id = ?", id).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RoleRepository) GetByName(name string) (*roleDatamodel.Role, error) {
	var rec roleDatamodel.Role
	err := r.db.Where("name = ?", name).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RoleRepository) List(includeInactive bool) ([]roleDatamodel.Role, error) {
	var roles []roleDatamodel.Role
	query := r.db.Order("id ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&roleDatamodel.Role{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *RoleRepository) Create(rec *roleDatamodel.Role) error {
	return r.db.Create(rec).Error
}

func (r *RoleRepository) Update(rec *roleDatamodel.Role) error {
	return r.db.Save(rec).Error
}

func (r *RoleRepository) CountActiveUsers(roleID int64) (int64, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("role_id = ? AND is_active = ?", roleID, true).
		Count(&count).Error
	return count, err
}

func (r *RoleRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&roleDatamodel.Role{}).Error
}
