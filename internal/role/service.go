package role

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/activitylog"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
)

// Repository defines the data access methods for the role registry.
type Repository interface {
	GetByID(id int64) (*roleDatamodel.Role, error)
	GetByName(name string) (*roleDatamodel.Role, error)
	List(includeInactive bool) ([]roleDatamodel.Role, error)
	ExistsByName(name string) (bool, error)
	Create(r *roleDatamodel.Role) error
	Update(r *roleDatamodel.Role) error
	CountActiveUsers(roleID int64) (int64, error)
	Delete(id int64) error
}

type Service struct {
	repo     Repository
	activity activitylog.Recorder
	logger   *slog.Logger
}

func NewService(repo Repository, activity activitylog.Recorder, logger *slog.Logger) *Service {
	if activity == nil {
		activity = activitylog.NopRecorder{}
	}
	return &Service{
		repo:     repo,
		activity: activity,
		logger:   logger,
	}
}

// GetRole exposes the raw record for collaborators (permission store).
func (s *Service) GetRole(roleID int64) (*roleDatamodel.Role, error) {
	return s.repo.GetByID(roleID)
}

func (s *Service) ListRoles(includeInactive bool) ([]Role, error) {
	records, err := s.repo.List(includeInactive)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, err
	}

	result := make([]Role, 0, len(records))
	for i := range records {
		count, err := s.repo.CountActiveUsers(records[i].ID)
		if err != nil {
			return nil, err
		}
		result = append(result, FromDataModel(&records[i], count))
	}
	return result, nil
}

func (s *Service) CreateRole(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(dto.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, internal.NewConflictError("role name already exists", internal.ErrCodeDuplicateRole)
	}

	record := &roleDatamodel.Role{
		Name:        dto.Name,
		Description: dto.Description,
		IsActive:    true,
	}

	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create role", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("role created", "role_id", record.ID, "name", record.Name)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "create",
		Entity:   "role",
		EntityID: record.ID,
		NewValue: record.Name,
	})

	result := FromDataModel(record, 0)
	return &result, nil
}

func (s *Service) UpdateRole(ctx context.Context, roleID int64, dto UpdateRoleDTO) (*Role, error) {
	record, err := s.repo.GetByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}

	if record.IsProtected() {
		return nil, internal.NewForbiddenError("protected roles cannot be modified", internal.ErrCodeProtectedRole)
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	oldName := record.Name

	if dto.Name != nil && *dto.Name != record.Name {
		exists, err := s.repo.ExistsByName(*dto.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, internal.NewConflictError("role name already exists", internal.ErrCodeDuplicateRole)
		}
		record.Name = *dto.Name
	}
	if dto.Description != nil {
		record.Description = *dto.Description
	}

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", roleID)
		return nil, err
	}

	s.logger.Info("role updated", "role_id", roleID, "old_name", oldName, "new_name", record.Name)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "update",
		Entity:   "role",
		EntityID: roleID,
		OldValue: oldName,
		NewValue: record.Name,
	})

	count, err := s.repo.CountActiveUsers(roleID)
	if err != nil {
		return nil, err
	}
	result := FromDataModel(record, count)
	return &result, nil
}

// ToggleRoleActive flips the active flag. The platform's root role cannot be
// switched off while active.
func (s *Service) ToggleRoleActive(ctx context.Context, roleID int64) (*Role, error) {
	record, err := s.repo.GetByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}

	if record.Name == roleDatamodel.NameSuperadmin && record.IsActive {
		return nil, internal.NewForbiddenError("the superadmin role cannot be deactivated", internal.ErrCodeProtectedRole)
	}

	oldState := record.IsActive
	record.IsActive = !record.IsActive

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to toggle role", "error", err, "role_id", roleID)
		return nil, err
	}

	s.logger.Info("role toggled", "role_id", roleID, "name", record.Name, "is_active", record.IsActive)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "toggle_active",
		Entity:   "role",
		EntityID: roleID,
		OldValue: fmt.Sprintf("%t", oldState),
		NewValue: fmt.Sprintf("%t", record.IsActive),
	})

	count, err := s.repo.CountActiveUsers(roleID)
	if err != nil {
		return nil, err
	}
	result := FromDataModel(record, count)
	return &result, nil
}

func (s *Service) DeleteRole(ctx context.Context, roleID int64) error {
	record, err := s.repo.GetByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrRoleNotFound
		}
		return err
	}

	if record.IsProtected() {
		return internal.NewForbiddenError("protected roles cannot be deleted", internal.ErrCodeProtectedRole)
	}

	count, err := s.repo.CountActiveUsers(roleID)
	if err != nil {
		return err
	}
	if count > 0 {
		return internal.NewConflictError("role still has active users", internal.ErrCodeRoleHasUsers)
	}

	if err := s.repo.Delete(roleID); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", roleID)
		return err
	}

	s.logger.Info("role deleted", "role_id", roleID, "name", record.Name)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "delete",
		Entity:   "role",
		EntityID: roleID,
		OldValue: record.Name,
	})

	return nil
}

func actorID(ctx context.Context) int64 {
	if identity, ok := internal.IdentityFromContext(ctx); ok {
		return identity.UserID
	}
	return 0
}
