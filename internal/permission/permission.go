package permission

import (
	"github.com/servicehub/admin-backend/internal"
	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	userDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/user"
)

// Capability is one of the four CRUD grants a user can hold on a module.
type Capability string

const (
	CapabilityView   Capability = "can_view"
	CapabilityAdd    Capability = "can_add"
	CapabilityEdit   Capability = "can_edit"
	CapabilityDelete Capability = "can_delete"
)

// ParseCapability validates a capability name from an untrusted caller.
func ParseCapability(name string) (Capability, *internal.AppError) {
	switch Capability(name) {
	case CapabilityView, CapabilityAdd, CapabilityEdit, CapabilityDelete:
		return Capability(name), nil
	}
	return "", internal.NewValidationError("unknown capability name: "+name, internal.ErrCodeInvalidCapability)
}

// Grants is the resolved capability set for one (user, module) pair.
type Grants struct {
	CanView   bool `json:"can_view"`
	CanAdd    bool `json:"can_add"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// FullGrants is what the superadmin bypass resolves to.
var FullGrants = Grants{CanView: true, CanAdd: true, CanEdit: true, CanDelete: true}

// Any reports whether at least one capability is granted. Grant rows where
// Any is false are never stored.
func (g Grants) Any() bool {
	return g.CanView || g.CanAdd || g.CanEdit || g.CanDelete
}

func (g Grants) Has(c Capability) bool {
	switch c {
	case CapabilityView:
		return g.CanView
	case CapabilityAdd:
		return g.CanAdd
	case CapabilityEdit:
		return g.CanEdit
	case CapabilityDelete:
		return g.CanDelete
	}
	return false
}

// ModulePermission is one row of the permission matrix: a module plus the
// effective or stored grants on it.
type ModulePermission struct {
	ModuleID   int64  `json:"module_id"`
	ModuleName string `json:"module_name"`
	Label      string `json:"label"`
	Grants
}

// Repository defines the data access methods for grant rows and the module
// and role lookups resolution depends on.
type Repository interface {
	GetUserPermission(userID, moduleID int64) (*userDatamodel.UserPermission, error)
	GetRolePermission(roleID, moduleID int64) (*roleDatamodel.RolePermission, error)
	ListUserPermissions(userID int64) ([]userDatamodel.UserPermission, error)
	ListRolePermissions(roleID int64) ([]roleDatamodel.RolePermission, error)
	ReplaceRolePermissions(roleID int64, rows []roleDatamodel.RolePermission) error
	UpsertUserPermission(row *userDatamodel.UserPermission) error
	DeleteUserPermission(userID, moduleID int64) error
	GetModuleByName(name string) (*moduleDatamodel.Module, error)
	GetModuleByID(id int64) (*moduleDatamodel.Module, error)
	ListModules() ([]moduleDatamodel.Module, error)
	GetRoleByID(roleID int64) (*roleDatamodel.Role, error)
}

func grantsFromUserRow(row *userDatamodel.UserPermission) Grants {
	return Grants{
		CanView:   row.CanView,
		CanAdd:    row.CanAdd,
		CanEdit:   row.CanEdit,
		CanDelete: row.CanDelete,
	}
}

func grantsFromRoleRow(row *roleDatamodel.RolePermission) Grants {
	return Grants{
		CanView:   row.CanView,
		CanAdd:    row.CanAdd,
		CanEdit:   row.CanEdit,
		CanDelete: row.CanDelete,
	}
}
