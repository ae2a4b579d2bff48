package permission

import (
	"log/slog"
	"sort"

	"github.com/servicehub/admin-backend/internal"
	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	moduleDomain "github.com/servicehub/admin-backend/internal/module"
)

// Resolver computes effective capabilities from the overlay of user override
// and role default, with the superadmin bypass on top. It is a pure read-side
// projection: nothing here writes.
//
// Precedence for one (user, module) pair:
//  1. superadmin role name short-circuits to all-true before any lookup;
//  2. a user override row, when present, IS the result (it replaces the role
//     default wholesale, it does not merge field by field);
//  3. otherwise the role default row, when present;
//  4. otherwise every capability is false.
type Resolver struct {
	repo                Repository
	ignoreInactiveRoles bool
	logger              *slog.Logger
}

func NewResolver(repo Repository, ignoreInactiveRoles bool, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:                repo,
		ignoreInactiveRoles: ignoreInactiveRoles,
		logger:              logger,
	}
}

// Resolve reports whether the identity holds the named capability on the
// named module.
func (r *Resolver) Resolve(identity *internal.Identity, moduleName string, capabilityName string) (bool, error) {
	capability, appErr := ParseCapability(capabilityName)
	if appErr != nil {
		return false, appErr
	}

	if identity.RoleName == roleDatamodel.NameSuperadmin {
		return true, nil
	}

	mod, err := r.repo.GetModuleByName(moduleName)
	if err != nil {
		return false, err
	}
	if mod == nil {
		return false, internal.ErrModuleNotFound
	}

	grants, err := r.resolveModule(identity, mod.ID)
	if err != nil {
		return false, err
	}

	return grants.Has(capability), nil
}

// ResolveAll computes the full permission matrix for the identity: exactly one
// entry per module in the hierarchy, zero-grant modules included, roots in
// name order each followed by its children in name order.
func (r *Resolver) ResolveAll(identity *internal.Identity) ([]ModulePermission, error) {
	modules, err := r.repo.ListModules()
	if err != nil {
		return nil, err
	}

	superadmin := identity.RoleName == roleDatamodel.NameSuperadmin

	overrides := make(map[int64]Grants)
	defaults := make(map[int64]Grants)

	if !superadmin {
		userRows, err := r.repo.ListUserPermissions(identity.UserID)
		if err != nil {
			return nil, err
		}
		for i := range userRows {
			overrides[userRows[i].ModuleID] = grantsFromUserRow(&userRows[i])
		}

		roleActive, err := r.roleLayerActive(identity.RoleID)
		if err != nil {
			return nil, err
		}
		if roleActive {
			roleRows, err := r.repo.ListRolePermissions(identity.RoleID)
			if err != nil {
				return nil, err
			}
			for i := range roleRows {
				defaults[roleRows[i].ModuleID] = grantsFromRoleRow(&roleRows[i])
			}
		}
	}

	nameByID := make(map[int64]string, len(modules))
	for i := range modules {
		nameByID[modules[i].ID] = modules[i].Name
	}

	ordered := orderHierarchy(modules)

	result := make([]ModulePermission, 0, len(ordered))
	for _, mod := range ordered {
		entry := ModulePermission{
			ModuleID:   mod.ID,
			ModuleName: mod.Name,
		}

		parentName := ""
		if mod.ParentID != nil {
			parentName = nameByID[*mod.ParentID]
		}
		entry.Label = moduleDomain.Label(parentName, mod.Name)

		switch {
		case superadmin:
			entry.Grants = FullGrants
		default:
			if grants, ok := overrides[mod.ID]; ok {
				entry.Grants = grants
			} else if grants, ok := defaults[mod.ID]; ok {
				entry.Grants = grants
			}
		}

		result = append(result, entry)
	}

	return result, nil
}

// resolveModule walks the override-then-default lookup chain for one module.
func (r *Resolver) resolveModule(identity *internal.Identity, moduleID int64) (Grants, error) {
	override, err := r.repo.GetUserPermission(identity.UserID, moduleID)
	if err != nil {
		return Grants{}, err
	}
	if override != nil {
		return grantsFromUserRow(override), nil
	}

	roleActive, err := r.roleLayerActive(identity.RoleID)
	if err != nil {
		return Grants{}, err
	}
	if !roleActive {
		return Grants{}, nil
	}

	roleDefault, err := r.repo.GetRolePermission(identity.RoleID, moduleID)
	if err != nil {
		return Grants{}, err
	}
	if roleDefault != nil {
		return grantsFromRoleRow(roleDefault), nil
	}

	return Grants{}, nil
}

// roleLayerActive reports whether the role default layer participates in
// resolution. Historically grants from a deactivated role keep applying;
// the ignore_inactive_roles policy flips that without touching stored rows.
func (r *Resolver) roleLayerActive(roleID int64) (bool, error) {
	if !r.ignoreInactiveRoles {
		return true, nil
	}

	role, err := r.repo.GetRoleByID(roleID)
	if err != nil {
		return false, err
	}
	if role == nil {
		return false, nil
	}
	return role.IsActive, nil
}

// orderHierarchy sorts roots by name and slots each root's children, also by
// name, directly after it.
func orderHierarchy(modules []moduleDatamodel.Module) []moduleDatamodel.Module {
	var roots []moduleDatamodel.Module
	children := make(map[int64][]moduleDatamodel.Module)

	for _, m := range modules {
		if m.ParentID == nil {
			roots = append(roots, m)
		} else {
			children[*m.ParentID] = append(children[*m.ParentID], m)
		}
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })

	ordered := make([]moduleDatamodel.Module, 0, len(modules))
	for _, root := range roots {
		ordered = append(ordered, root)
		kids := children[root.ID]
		sort.Slice(kids, func(i, j int) bool { return kids[i].Name < kids[j].Name })
		ordered = append(ordered, kids...)
		delete(children, root.ID)
	}

	// Orphans whose parent row is missing still get an entry at the end so the
	// matrix never drops a module.
	var orphanParents []int64
	for parentID := range children {
		orphanParents = append(orphanParents, parentID)
	}
	sort.Slice(orphanParents, func(i, j int) bool { return orphanParents[i] < orphanParents[j] })
	for _, parentID := range orphanParents {
		kids := children[parentID]
		sort.Slice(kids, func(i, j int) bool { return kids[i].Name < kids[j].Name })
		ordered = append(ordered, kids...)
	}

	return ordered
}
