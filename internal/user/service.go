package user

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/activitylog"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	userDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/user"
)

// Repository defines the data access methods for staff accounts.
type Repository interface {
	GetByID(id int64) (*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	List() ([]userDatamodel.User, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
	Create(u *userDatamodel.User) error
	Update(u *userDatamodel.User) error
}

// RoleDirectory resolves role records for staff views and role assignment.
type RoleDirectory interface {
	GetRole(roleID int64) (*roleDatamodel.Role, error)
}

type Service struct {
	repo       Repository
	roles      RoleDirectory
	activity   activitylog.Recorder
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, roles RoleDirectory, activity activitylog.Recorder, bcryptCost int, logger *slog.Logger) *Service {
	if activity == nil {
		activity = activitylog.NopRecorder{}
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		roles:      roles,
		activity:   activity,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Exists reports whether a staff account with the given id is on record.
func (s *Service) Exists(userID int64) (bool, error) {
	record, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return record != nil, nil
}

func (s *Service) CreateStaff(ctx context.Context, dto CreateStaffDTO) (*Staff, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if exists, err := s.repo.ExistsByEmail(dto.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, internal.NewConflictError("email already registered", internal.ErrCodeDuplicateUser)
	}
	if exists, err := s.repo.ExistsByUsername(dto.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, internal.NewConflictError("username already taken", internal.ErrCodeDuplicateUser)
	}

	roleRecord, err := s.roles.GetRole(dto.RoleID)
	if err != nil || roleRecord == nil {
		return nil, internal.NewReferenceError("role does not exist", internal.ErrCodeRoleNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	record := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		Username:     dto.Username,
		PasswordHash: string(hash),
		RoleID:       dto.RoleID,
		IsActive:     true,
	}

	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create staff account", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("staff account created", "user_id", record.ID, "username", record.Username, "role_id", record.RoleID)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "create",
		Entity:   "user",
		EntityID: record.ID,
		NewValue: record.Username,
	})

	result := FromDataModel(record, roleRecord.Name)
	return &result, nil
}

func (s *Service) GetStaff(userID int64) (*Staff, error) {
	record, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	result := FromDataModel(record, s.roleName(record.RoleID))
	return &result, nil
}

func (s *Service) ListStaff() ([]Staff, error) {
	records, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list staff accounts", "error", err)
		return nil, err
	}

	names := make(map[int64]string)
	result := make([]Staff, 0, len(records))
	for i := range records {
		name, ok := names[records[i].RoleID]
		if !ok {
			name = s.roleName(records[i].RoleID)
			names[records[i].RoleID] = name
		}
		result = append(result, FromDataModel(&records[i], name))
	}
	return result, nil
}

func (s *Service) ToggleStaffActive(ctx context.Context, userID int64) (*Staff, error) {
	record, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	record.IsActive = !record.IsActive

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to toggle staff account", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("staff account toggled", "user_id", userID, "is_active", record.IsActive)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "toggle_active",
		Entity:   "user",
		EntityID: userID,
	})

	result := FromDataModel(record, s.roleName(record.RoleID))
	return &result, nil
}

func (s *Service) AssignRole(ctx context.Context, userID int64, dto AssignRoleDTO) (*Staff, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	roleRecord, err := s.roles.GetRole(dto.RoleID)
	if err != nil || roleRecord == nil {
		return nil, internal.NewReferenceError("role does not exist", internal.ErrCodeRoleNotFound)
	}

	oldRoleID := record.RoleID
	record.RoleID = dto.RoleID

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to assign role", "error", err, "user_id", userID, "role_id", dto.RoleID)
		return nil, err
	}

	s.logger.Info("role assigned", "user_id", userID, "old_role_id", oldRoleID, "new_role_id", dto.RoleID)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "assign_role",
		Entity:   "user",
		EntityID: userID,
		NewValue: roleRecord.Name,
	})

	result := FromDataModel(record, roleRecord.Name)
	return &result, nil
}

func (s *Service) roleName(roleID int64) string {
	roleRecord, err := s.roles.GetRole(roleID)
	if err != nil || roleRecord == nil {
		return ""
	}
	return roleRecord.Name
}

func actorID(ctx context.Context) int64 {
	if identity, ok := internal.IdentityFromContext(ctx); ok {
		return identity.UserID
	}
	return 0
}
