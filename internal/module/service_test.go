package module_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
	"github.com/servicehub/admin-backend/internal/module"
)

func TestModule(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Module Hierarchy Suite")
}

// Mock repository for testing
type mockModuleRepository struct {
	modules     map[int64]*moduleDatamodel.Module
	grantCounts map[int64]int64
	nextID      int64

	createError error
	updateError error
	deleteError error
	listError   error
	getError    error
}

func newMockModuleRepository() *mockModuleRepository {
	return &mockModuleRepository{
		modules:     make(map[int64]*moduleDatamodel.Module),
		grantCounts: make(map[int64]int64),
		nextID:      1,
	}
}

func (m *mockModuleRepository) add(name string, parentID *int64) *moduleDatamodel.Module {
	record := &moduleDatamodel.Module{
		ID:       m.nextID,
		Name:     name,
		Route:    "/" + name,
		ParentID: parentID,
	}
	m.modules[record.ID] = record
	m.nextID++
	return record
}

func (m *mockModuleRepository) GetByID(id int64) (*moduleDatamodel.Module, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	record, exists := m.modules[id]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *mockModuleRepository) GetByName(name string) (*moduleDatamodel.Module, error) {
	for _, record := range m.modules {
		if record.Name == name {
			copied := *record
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepository) List() ([]moduleDatamodel.Module, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	records := make([]moduleDatamodel.Module, 0, len(m.modules))
	for id := int64(1); id < m.nextID; id++ {
		if record, exists := m.modules[id]; exists {
			records = append(records, *record)
		}
	}
	return records, nil
}

func (m *mockModuleRepository) ListChildren(parentID int64) ([]moduleDatamodel.Module, error) {
	var records []moduleDatamodel.Module
	for id := int64(1); id < m.nextID; id++ {
		record, exists := m.modules[id]
		if exists && record.ParentID != nil && *record.ParentID == parentID {
			records = append(records, *record)
		}
	}
	return records, nil
}

func (m *mockModuleRepository) ExistsByName(name string) (bool, error) {
	for _, record := range m.modules {
		if record.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockModuleRepository) ExistsByRoute(route string) (bool, error) {
	for _, record := range m.modules {
		if record.Route == route {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockModuleRepository) Create(record *moduleDatamodel.Module) error {
	if m.createError != nil {
		return m.createError
	}
	record.ID = m.nextID
	m.nextID++
	copied := *record
	m.modules[record.ID] = &copied
	return nil
}

func (m *mockModuleRepository) UpdateParent(id int64, parentID *int64) error {
	if m.updateError != nil {
		return m.updateError
	}
	record, exists := m.modules[id]
	if !exists {
		return errors.New("module not found")
	}
	record.ParentID = parentID
	return nil
}

func (m *mockModuleRepository) CountChildren(id int64) (int64, error) {
	var count int64
	for _, record := range m.modules {
		if record.ParentID != nil && *record.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (m *mockModuleRepository) CountGrantReferences(moduleID int64) (int64, error) {
	return m.grantCounts[moduleID], nil
}

func (m *mockModuleRepository) Delete(id int64) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.modules, id)
	return nil
}

var _ = Describe("ModuleService", func() {
	var (
		mockRepo *mockModuleRepository
		service  *module.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockModuleRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = module.NewService(mockRepo, nil, logger)
		ctx = context.Background()
	})

	Describe("CreateModule", func() {
		It("should create a root module", func() {
			result, err := service.CreateModule(ctx, module.CreateModuleDTO{
				Name:  "dashboard",
				Route: "/dashboard",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).To(BeNumerically(">", 0))
			Expect(result.IsRoot()).To(BeTrue())
			Expect(result.Label).To(Equal("dashboard"))
		})

		It("should create a sub-module under a root", func() {
			root := mockRepo.add("settings", nil)

			result, err := service.CreateModule(ctx, module.CreateModuleDTO{
				Name:     "staff",
				Route:    "/settings/staff",
				ParentID: &root.ID,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.IsRoot()).To(BeFalse())
			Expect(result.Label).To(Equal("settings → staff"))
		})

		It("should reject a duplicate name", func() {
			mockRepo.add("dashboard", nil)

			_, err := service.CreateModule(ctx, module.CreateModuleDTO{
				Name:  "dashboard",
				Route: "/other",
			})

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateModule))
		})

		It("should reject a duplicate route", func() {
			mockRepo.add("dashboard", nil)

			_, err := service.CreateModule(ctx, module.CreateModuleDTO{
				Name:  "overview",
				Route: "/dashboard",
			})

			Expect(err).To(HaveOccurred())
		})

		It("should reject a missing parent", func() {
			missing := int64(999)

			_, err := service.CreateModule(ctx, module.CreateModuleDTO{
				Name:     "staff",
				Route:    "/staff",
				ParentID: &missing,
			})

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidParent))
		})

		It("should reject a sub-module as parent", func() {
			root := mockRepo.add("settings", nil)
			child := mockRepo.add("staff", &root.ID)

			_, err := service.CreateModule(ctx, module.CreateModuleDTO{
				Name:     "badges",
				Route:    "/badges",
				ParentID: &child.ID,
			})

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidParent))
		})
	})

	Describe("ListModules", func() {
		It("should nest children under their roots with labels", func() {
			settings := mockRepo.add("settings", nil)
			mockRepo.add("staff", &settings.ID)
			mockRepo.add("dashboard", nil)

			result, err := service.ListModules()

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(2))
			Expect(result[0].Name).To(Equal("settings"))
			Expect(result[0].Children).To(HaveLen(1))
			Expect(result[0].Children[0].Label).To(Equal("settings → staff"))
			Expect(result[1].Children).To(BeEmpty())
		})
	})

	Describe("GetChildren", func() {
		It("should list the sub-modules of a root", func() {
			settings := mockRepo.add("settings", nil)
			mockRepo.add("staff", &settings.ID)
			mockRepo.add("roles", &settings.ID)

			result, err := service.GetChildren(settings.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(2))
		})

		It("should treat a sub-module as having no children", func() {
			settings := mockRepo.add("settings", nil)
			staff := mockRepo.add("staff", &settings.ID)

			_, err := service.GetChildren(staff.ID)

			Expect(err).To(MatchError(internal.ErrModuleNotFound))
		})

		It("should return not found for an unknown module", func() {
			_, err := service.GetChildren(999)

			Expect(err).To(MatchError(internal.ErrModuleNotFound))
		})

		It("should pass a repository failure through unmapped", func() {
			mockRepo.getError = errors.New("connection refused")

			_, err := service.GetChildren(1)

			Expect(err).To(HaveOccurred())
			Expect(err).ToNot(MatchError(internal.ErrModuleNotFound))
		})
	})

	Describe("ReparentModule", func() {
		It("should move a root under another root", func() {
			bookings := mockRepo.add("bookings", nil)
			payments := mockRepo.add("payments", nil)

			result, err := service.ReparentModule(ctx, payments.ID, &bookings.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(*result.ParentID).To(Equal(bookings.ID))
			Expect(result.Label).To(Equal("bookings → payments"))
		})

		It("should detach a sub-module when the new parent is nil", func() {
			bookings := mockRepo.add("bookings", nil)
			payments := mockRepo.add("payments", &bookings.ID)

			result, err := service.ReparentModule(ctx, payments.ID, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ParentID).To(BeNil())
			Expect(result.Label).To(Equal("payments"))
		})

		It("should refuse to demote a module that has children", func() {
			settings := mockRepo.add("settings", nil)
			mockRepo.add("staff", &settings.ID)
			dashboard := mockRepo.add("dashboard", nil)

			_, err := service.ReparentModule(ctx, settings.ID, &dashboard.ID)

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeHierarchyDepth))
		})

		It("should refuse a sub-module as the new parent", func() {
			settings := mockRepo.add("settings", nil)
			staff := mockRepo.add("staff", &settings.ID)
			dashboard := mockRepo.add("dashboard", nil)

			_, err := service.ReparentModule(ctx, dashboard.ID, &staff.ID)

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidParent))
		})

		It("should refuse a module as its own parent", func() {
			dashboard := mockRepo.add("dashboard", nil)

			_, err := service.ReparentModule(ctx, dashboard.ID, &dashboard.ID)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteModule", func() {
		It("should delete a leaf module with no grants", func() {
			dashboard := mockRepo.add("dashboard", nil)

			err := service.DeleteModule(ctx, dashboard.ID)

			Expect(err).ToNot(HaveOccurred())
			_, getErr := mockRepo.GetByID(dashboard.ID)
			Expect(getErr).To(HaveOccurred())
		})

		It("should refuse while sub-modules remain", func() {
			settings := mockRepo.add("settings", nil)
			mockRepo.add("staff", &settings.ID)

			err := service.DeleteModule(ctx, settings.ID)

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeModuleHasChildren))
		})

		It("should refuse while grant rows still reference it", func() {
			dashboard := mockRepo.add("dashboard", nil)
			mockRepo.grantCounts[dashboard.ID] = 3

			err := service.DeleteModule(ctx, dashboard.ID)

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeModuleInUse))
		})

		It("should return not found for an unknown module", func() {
			err := service.DeleteModule(ctx, 999)

			Expect(err).To(MatchError(internal.ErrModuleNotFound))
		})
	})
})
