package module

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/activitylog"
	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
)

// Repository defines the data access methods for the module hierarchy.
type Repository interface {
	GetByID(id int64) (*moduleDatamodel.Module, error)
	GetByName(name string) (*moduleDatamodel.Module, error)
	List() ([]moduleDatamodel.Module, error)
	ListChildren(parentID int64) ([]moduleDatamodel.Module, error)
	ExistsByName(name string) (bool, error)
	ExistsByRoute(route string) (bool, error)
	Create(m *moduleDatamodel.Module) error
	UpdateParent(id int64, parentID *int64) error
	CountChildren(id int64) (int64, error)
	CountGrantReferences(moduleID int64) (int64, error)
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

// ListModules returns the hierarchy with roots ordered by id, children
// attached beneath their parent, and display labels rendered.
func (s *Service) ListModules() ([]Module, error) {
	records, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list modules", "error", err)
		return nil, err
	}

	byID := make(map[int64]*moduleDatamodel.Module, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	var roots []Module
	children := make(map[int64][]Module)

	for i := range records {
		rec := &records[i]
		if rec.ParentID == nil {
			roots = append(roots, FromDataModel(rec, ""))
			continue
		}
		parentName := ""
		if parent, ok := byID[*rec.ParentID]; ok {
			parentName = parent.Name
		}
		children[*rec.ParentID] = append(children[*rec.ParentID], FromDataModel(rec, parentName))
	}

	for i := range roots {
		roots[i].Children = children[roots[i].ID]
	}

	return roots, nil
}

// GetChildren returns the sub-modules of a root module.
func (s *Service) GetChildren(parentID int64) ([]Module, error) {
	parent, err := s.repo.GetByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrModuleNotFound
		}
		s.logger.Warn("parent module lookup failed", "error", err, "parent_id", parentID)
		return nil, err
	}
	if parent.ParentID != nil {
		// Sub-modules cannot have children, so asking for theirs is a miss.
		return nil, internal.ErrModuleNotFound
	}

	records, err := s.repo.ListChildren(parentID)
	if err != nil {
		s.logger.Error("failed to list child modules", "error", err, "parent_id", parentID)
		return nil, err
	}

	result := make([]Module, 0, len(records))
	for i := range records {
		result = append(result, FromDataModel(&records[i], parent.Name))
	}
	return result, nil
}

func (s *Service) CreateModule(ctx context.Context, dto CreateModuleDTO) (*Module, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if exists, err := s.repo.ExistsByName(dto.Name); err != nil {
		return nil, err
	} else if exists {
		return nil, internal.NewConflictError("module name already exists", internal.ErrCodeDuplicateModule)
	}

	if exists, err := s.repo.ExistsByRoute(dto.Route); err != nil {
		return nil, err
	} else if exists {
		return nil, internal.NewConflictError("module route already exists", internal.ErrCodeDuplicateModule)
	}

	var parentName string
	if dto.ParentID != nil {
		parent, err := s.repo.GetByID(*dto.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, internal.NewReferenceError("parent module does not exist", internal.ErrCodeInvalidParent)
			}
			return nil, err
		}
		if parent.ParentID != nil {
			// Depth is capped at one level: a sub-module may not parent another.
			return nil, internal.NewReferenceError("parent module is itself a sub-module", internal.ErrCodeInvalidParent)
		}
		parentName = parent.Name
	}

	record := &moduleDatamodel.Module{
		Name:        dto.Name,
		Route:       dto.Route,
		Description: dto.Description,
		ParentID:    dto.ParentID,
	}

	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create module", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("module created", "module_id", record.ID, "name", record.Name, "parent_id", record.ParentID)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "create",
		Entity:   "module",
		EntityID: record.ID,
		NewValue: record.Name,
	})

	result := FromDataModel(record, parentName)
	return &result, nil
}

// ReparentModule moves a module under a new root, or detaches it when
// newParentID is nil.
func (s *Service) ReparentModule(ctx context.Context, moduleID int64, newParentID *int64) (*Module, error) {
	record, err := s.repo.GetByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrModuleNotFound
		}
		return nil, err
	}

	var parentName string
	if newParentID != nil {
		childCount, err := s.repo.CountChildren(moduleID)
		if err != nil {
			return nil, err
		}
		if childCount > 0 {
			return nil, internal.NewInvariantError("module with sub-modules cannot become a sub-module", internal.ErrCodeHierarchyDepth)
		}

		parent, err := s.repo.GetByID(*newParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, internal.NewReferenceError("new parent module does not exist", internal.ErrCodeInvalidParent)
			}
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, internal.NewReferenceError("new parent module is itself a sub-module", internal.ErrCodeInvalidParent)
		}
		if parent.ID == moduleID {
			return nil, internal.NewReferenceError("module cannot be its own parent", internal.ErrCodeInvalidParent)
		}
		parentName = parent.Name
	}

	oldParent := "none"
	if record.ParentID != nil {
		oldParent = fmt.Sprintf("%d", *record.ParentID)
	}

	if err := s.repo.UpdateParent(moduleID, newParentID); err != nil {
		s.logger.Error("failed to reparent module", "error", err, "module_id", moduleID)
		return nil, err
	}

	newParent := "none"
	if newParentID != nil {
		newParent = fmt.Sprintf("%d", *newParentID)
	}

	s.logger.Info("module reparented", "module_id", moduleID, "old_parent", oldParent, "new_parent", newParent)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "reparent",
		Entity:   "module",
		EntityID: moduleID,
		OldValue: oldParent,
		NewValue: newParent,
	})

	record.ParentID = newParentID
	result := FromDataModel(record, parentName)
	return &result, nil
}

func (s *Service) DeleteModule(ctx context.Context, moduleID int64) error {
	record, err := s.repo.GetByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrModuleNotFound
		}
		return err
	}

	childCount, err := s.repo.CountChildren(moduleID)
	if err != nil {
		return err
	}
	if childCount > 0 {
		return internal.NewConflictError("module still has sub-modules", internal.ErrCodeModuleHasChildren)
	}

	grantCount, err := s.repo.CountGrantReferences(moduleID)
	if err != nil {
		return err
	}
	if grantCount > 0 {
		return internal.NewConflictError("module is still referenced by permission grants", internal.ErrCodeModuleInUse)
	}

	if err := s.repo.Delete(moduleID); err != nil {
		s.logger.Error("failed to delete module", "error", err, "module_id", moduleID)
		return err
	}

	s.logger.Info("module deleted", "module_id", moduleID, "name", record.Name)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "delete",
		Entity:   "module",
		EntityID: moduleID,
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
