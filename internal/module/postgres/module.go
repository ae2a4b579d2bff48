package postgres

import (
	"time"

	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
	"github.com/servicehub/admin-backend/internal/module"
	"gorm.io/gorm"
)

// ModuleRepository implements the module.Repository interface using GORM.
type ModuleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) module.Repository {
	return &ModuleRepository{db: db}
}

func (r *ModuleRepository) GetByID(id int64) (*moduleDatamodel.Module, error) {
	var m moduleDatamodel.Module
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ModuleRepository) GetByName(name string) (*moduleDatamodel.Module, error) {
	var m moduleDatamodel.Module
	err := r.db.Where("name = ?", name).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns every module, roots first ordered by id, then sub-modules.
func (r *ModuleRepository) List() ([]moduleDatamodel.Module, error) {
	var modules []moduleDatamodel.Module
	err := r.db.Order("parent_id IS NOT NULL, id ASC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) ListChildren(parentID int64) ([]moduleDatamodel.Module, error) {
	var modules []moduleDatamodel.Module
	err := r.db.Where("parent_id = ?", parentID).Order("id ASC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&moduleDatamodel.Module{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *ModuleRepository) ExistsByRoute(route string) (bool, error) {
	var count int64
	err := r.db.Model(&moduleDatamodel.Module{}).Where("route = ?", route).Count(&count).Error
	return count > 0, err
}

func (r *ModuleRepository) Create(m *moduleDatamodel.Module) error {
	return r.db.Create(m).Error
}

func (r *ModuleRepository) UpdateParent(id int64, parentID *int64) error {
	return r.db.Model(&moduleDatamodel.Module{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"parent_id":  parentID,
			"updated_at": time.Now(),
		}).Error
}

func (r *ModuleRepository) CountChildren(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&moduleDatamodel.Module{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

// CountGrantReferences counts role and user grant rows still pointing at the
// module. Deletion is blocked until both are zero.
func (r *ModuleRepository) CountGrantReferences(moduleID int64) (int64, error) {
	var roleCount int64
	if err := r.db.Table("role_permissions").Where("module_id = ?", moduleID).Count(&roleCount).Error; err != nil {
		return 0, err
	}

	var userCount int64
	if err := r.db.Table("user_permissions").Where("module_id = ?", moduleID).Count(&userCount).Error; err != nil {
		return 0, err
	}

	return roleCount + userCount, nil
}

func (r *ModuleRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&moduleDatamodel.Module{}).Error
}
