package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/activitylog"
	"github.com/servicehub/admin-backend/internal/core/events"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	userDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/user"
	moduleDomain "github.com/servicehub/admin-backend/internal/module"
)

// RoleDirectory is the slice of the role registry the permission store needs.
type RoleDirectory interface {
	GetRole(roleID int64) (*roleDatamodel.Role, error)
}

// UserDirectory resolves user existence for override writes.
type UserDirectory interface {
	Exists(userID int64) (bool, error)
}

// Service owns the two grant layers: role defaults and per-user overrides.
// Resolution lives in Resolver; this type only mutates and projects rows.
type Service struct {
	repo     Repository
	roles    RoleDirectory
	users    UserDirectory
	activity activitylog.Recorder
	bus      events.Publisher
	logger   *slog.Logger
}

func NewService(repo Repository, roles RoleDirectory, users UserDirectory, activity activitylog.Recorder, bus events.Publisher, logger *slog.Logger) *Service {
	if activity == nil {
		activity = activitylog.NopRecorder{}
	}
	return &Service{
		repo:     repo,
		roles:    roles,
		users:    users,
		activity: activity,
		bus:      bus,
		logger:   logger,
	}
}

// SetRolePermissions replaces every grant row for the role in one
// transaction. Grants with no true capability are dropped, not stored: the
// tables hold positive grants only.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, grants []ModuleGrantDTO) error {
	role, err := s.roles.GetRole(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrRoleNotFound
		}
		return err
	}

	rows := make([]roleDatamodel.RolePermission, 0, len(grants))
	seen := make(map[int64]bool, len(grants))
	for _, grant := range grants {
		if err := grant.Validate(); err != nil {
			return err
		}
		if seen[grant.ModuleID] {
			return internal.NewValidationError(
				fmt.Sprintf("duplicate grant for module %d", grant.ModuleID),
				internal.ErrCodeValidationFailed)
		}
		seen[grant.ModuleID] = true

		if !grant.Grants().Any() {
			continue
		}
		rows = append(rows, roleDatamodel.RolePermission{
			RoleID:    roleID,
			ModuleID:  grant.ModuleID,
			CanView:   grant.CanView,
			CanAdd:    grant.CanAdd,
			CanEdit:   grant.CanEdit,
			CanDelete: grant.CanDelete,
		})
	}

	if err := s.repo.ReplaceRolePermissions(roleID, rows); err != nil {
		s.logger.Error("failed to replace role permissions", "error", err, "role_id", roleID)
		return err
	}

	s.logger.Info("role permissions replaced",
		"role_id", roleID,
		"role_name", role.Name,
		"grant_count", len(rows))

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "replace_permissions",
		Entity:   "role",
		EntityID: roleID,
		NewValue: fmt.Sprintf("%d grants", len(rows)),
	})
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewPermissionsReplacedEvent(roleID, len(rows), actorID(ctx)))
	}

	return nil
}

// SetUserPermissionOverride upserts the override row for one (user, module)
// pair. An all-false payload deletes the row instead: the user falls back to
// the role default rather than carrying an explicit deny.
func (s *Service) SetUserPermissionOverride(ctx context.Context, userID, moduleID int64, grants Grants) error {
	exists, err := s.users.Exists(userID)
	if err != nil {
		return err
	}
	if !exists {
		return internal.ErrUserNotFound
	}

	mod, err := s.repo.GetModuleByID(moduleID)
	if err != nil {
		return err
	}
	if mod == nil {
		return internal.ErrModuleNotFound
	}

	if !grants.Any() {
		if err := s.repo.DeleteUserPermission(userID, moduleID); err != nil {
			s.logger.Error("failed to delete user override", "error", err, "user_id", userID, "module_id", moduleID)
			return err
		}

		s.logger.Info("user override removed", "user_id", userID, "module_id", moduleID)

		s.activity.Record(ctx, activitylog.Entry{
			ActorID:  actorID(ctx),
			Action:   "clear_override",
			Entity:   "user_permission",
			EntityID: userID,
			Remarks:  fmt.Sprintf("module %d", moduleID),
		})
		return nil
	}

	row := &userDatamodel.UserPermission{
		UserID:    userID,
		ModuleID:  moduleID,
		CanView:   grants.CanView,
		CanAdd:    grants.CanAdd,
		CanEdit:   grants.CanEdit,
		CanDelete: grants.CanDelete,
	}

	if err := s.repo.UpsertUserPermission(row); err != nil {
		s.logger.Error("failed to upsert user override", "error", err, "user_id", userID, "module_id", moduleID)
		return err
	}

	s.logger.Info("user override set",
		"user_id", userID,
		"module_id", moduleID,
		"can_view", grants.CanView,
		"can_add", grants.CanAdd,
		"can_edit", grants.CanEdit,
		"can_delete", grants.CanDelete)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "set_override",
		Entity:   "user_permission",
		EntityID: userID,
		NewValue: fmt.Sprintf("module %d", moduleID),
	})

	return nil
}

// GetRolePermissions returns the stored default grants for a role, enriched
// with hierarchy labels.
func (s *Service) GetRolePermissions(roleID int64) ([]ModulePermission, error) {
	if _, err := s.roles.GetRole(roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}

	rows, err := s.repo.ListRolePermissions(roleID)
	if err != nil {
		s.logger.Error("failed to list role permissions", "error", err, "role_id", roleID)
		return nil, err
	}

	grants := make(map[int64]Grants, len(rows))
	for i := range rows {
		grants[rows[i].ModuleID] = grantsFromRoleRow(&rows[i])
	}

	return s.enrichWithModules(grants)
}

// GetUserPermissions returns the stored override rows for a user, enriched
// with hierarchy labels. Modules without an override are not included.
func (s *Service) GetUserPermissions(userID int64) ([]ModulePermission, error) {
	exists, err := s.users.Exists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, internal.ErrUserNotFound
	}

	rows, err := s.repo.ListUserPermissions(userID)
	if err != nil {
		s.logger.Error("failed to list user permissions", "error", err, "user_id", userID)
		return nil, err
	}

	grants := make(map[int64]Grants, len(rows))
	for i := range rows {
		grants[rows[i].ModuleID] = grantsFromUserRow(&rows[i])
	}

	return s.enrichWithModules(grants)
}

// enrichWithModules joins stored grants against the hierarchy and renders
// labels, keeping only modules that actually have a row.
func (s *Service) enrichWithModules(grants map[int64]Grants) ([]ModulePermission, error) {
	modules, err := s.repo.ListModules()
	if err != nil {
		return nil, err
	}

	nameByID := make(map[int64]string, len(modules))
	for i := range modules {
		nameByID[modules[i].ID] = modules[i].Name
	}

	ordered := orderHierarchy(modules)

	result := make([]ModulePermission, 0, len(grants))
	for _, mod := range ordered {
		g, ok := grants[mod.ID]
		if !ok {
			continue
		}

		parentName := ""
		if mod.ParentID != nil {
			parentName = nameByID[*mod.ParentID]
		}

		result = append(result, ModulePermission{
			ModuleID:   mod.ID,
			ModuleName: mod.Name,
			Label:      moduleDomain.Label(parentName, mod.Name),
			Grants:     g,
		})
	}

	return result, nil
}

func actorID(ctx context.Context) int64 {
	if identity, ok := internal.IdentityFromContext(ctx); ok {
		return identity.UserID
	}
	return 0
}
