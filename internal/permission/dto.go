package permission

import (
	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/core/common/validation"
)

// ModuleGrantDTO is one grant in a role permission replacement payload.
type ModuleGrantDTO struct {
	ModuleID  int64 `json:"module_id"`
	CanView   bool  `json:"can_view"`
	CanAdd    bool  `json:"can_add"`
	CanEdit   bool  `json:"can_edit"`
	CanDelete bool  `json:"can_delete"`
}

func (d *ModuleGrantDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("module_id", d.ModuleID).Required()
	return v.Validate()
}

func (d *ModuleGrantDTO) Grants() Grants {
	return Grants{
		CanView:   d.CanView,
		CanAdd:    d.CanAdd,
		CanEdit:   d.CanEdit,
		CanDelete: d.CanDelete,
	}
}

// SetRolePermissionsDTO carries the full replacement set; grants with all
// four capabilities false are accepted and simply not stored.
type SetRolePermissionsDTO struct {
	Grants []ModuleGrantDTO `json:"grants"`
}

type SetUserOverrideDTO struct {
	ModuleID  int64 `json:"module_id"`
	CanView   bool  `json:"can_view"`
	CanAdd    bool  `json:"can_add"`
	CanEdit   bool  `json:"can_edit"`
	CanDelete bool  `json:"can_delete"`
}

func (d *SetUserOverrideDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("module_id", d.ModuleID).Required()
	return v.Validate()
}

func (d *SetUserOverrideDTO) Grants() Grants {
	return Grants{
		CanView:   d.CanView,
		CanAdd:    d.CanAdd,
		CanEdit:   d.CanEdit,
		CanDelete: d.CanDelete,
	}
}

// CheckDTO is the resolve query: does the caller hold capability on module.
type CheckDTO struct {
	Module     string `json:"module"`
	Capability string `json:"capability"`
}

func (d *CheckDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("module", d.Module).Required()
	v.Field("capability", d.Capability).Required()
	return v.Validate()
}
