package role_test

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
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	"github.com/servicehub/admin-backend/internal/role"
)

func TestRole(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Role Module Suite")
}

// Mock repository for testing
type mockRoleRepository struct {
	roles           map[int64]*roleDatamodel.Role
	activeUserCount map[int64]int64
	nextID          int64

	createError error
	updateError error
	deleteError error
	getError    error
}

func newMockRoleRepository() *mockRoleRepository {
	repo := &mockRoleRepository{
		roles:           make(map[int64]*roleDatamodel.Role),
		activeUserCount: make(map[int64]int64),
		nextID:          1,
	}
	repo.add(roleDatamodel.NameSuperadmin, true)
	repo.add(roleDatamodel.NameAdmin, true)
	return repo
}

func (m *mockRoleRepository) add(name string, active bool) *roleDatamodel.Role {
	record := &roleDatamodel.Role{ID: m.nextID, Name: name, IsActive: active}
	m.roles[record.ID] = record
	m.nextID++
	return record
}

func (m *mockRoleRepository) GetByID(id int64) (*roleDatamodel.Role, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	record, exists := m.roles[id]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *mockRoleRepository) GetByName(name string) (*roleDatamodel.Role, error) {
	for _, record := range m.roles {
		if record.Name == name {
			copied := *record
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoleRepository) List(includeInactive bool) ([]roleDatamodel.Role, error) {
	var records []roleDatamodel.Role
	for id := int64(1); id < m.nextID; id++ {
		record, exists := m.roles[id]
		if !exists {
			continue
		}
		if !includeInactive && !record.IsActive {
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

func (m *mockRoleRepository) ExistsByName(name string) (bool, error) {
	for _, record := range m.roles {
		if record.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRoleRepository) Create(r *roleDatamodel.Role) error {
	if m.createError != nil {
		return m.createError
	}
	r.ID = m.nextID
	m.nextID++
	copied := *r
	m.roles[r.ID] = &copied
	return nil
}

func (m *mockRoleRepository) Update(r *roleDatamodel.Role) error {
	if m.updateError != nil {
		return m.updateError
	}
	copied := *r
	m.roles[r.ID] = &copied
	return nil
}

func (m *mockRoleRepository) CountActiveUsers(roleID int64) (int64, error) {
	return m.activeUserCount[roleID], nil
}

func (m *mockRoleRepository) Delete(id int64) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.roles, id)
	return nil
}

var _ = Describe("RoleService", func() {
	var (
		mockRepo *mockRoleRepository
		service  *role.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockRoleRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = role.NewService(mockRepo, nil, logger)
		ctx = context.Background()
	})

	Describe("CreateRole", func() {
		It("should create an active role", func() {
			result, err := service.CreateRole(ctx, role.CreateRoleDTO{
				Name:        "operator",
				Description: "front office staff",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.IsActive).To(BeTrue())
			Expect(result.IsProtected).To(BeFalse())
			Expect(result.UserCount).To(Equal(int64(0)))
		})

		It("should reject a duplicate name", func() {
			_, err := service.CreateRole(ctx, role.CreateRoleDTO{Name: roleDatamodel.NameAdmin})

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateRole))
		})

		It("should reject an empty name", func() {
			_, err := service.CreateRole(ctx, role.CreateRoleDTO{})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateRole", func() {
		It("should rename a regular role", func() {
			record := mockRepo.add("operator", true)
			newName := "supervisor"

			result, err := service.UpdateRole(ctx, record.ID, role.UpdateRoleDTO{Name: &newName})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Name).To(Equal("supervisor"))
		})

		It("should refuse to modify a protected role", func() {
			newName := "root"

			_, err := service.UpdateRole(ctx, 1, role.UpdateRoleDTO{Name: &newName})

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeProtectedRole))
		})

		It("should refuse renaming onto an existing name", func() {
			record := mockRepo.add("operator", true)
			taken := roleDatamodel.NameAdmin

			_, err := service.UpdateRole(ctx, record.ID, role.UpdateRoleDTO{Name: &taken})

			Expect(err).To(HaveOccurred())
		})

		It("should return not found for an unknown role", func() {
			newName := "anything"

			_, err := service.UpdateRole(ctx, 999, role.UpdateRoleDTO{Name: &newName})

			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})

		It("should pass a repository failure through unmapped", func() {
			mockRepo.getError = errors.New("connection refused")
			newName := "anything"

			_, err := service.UpdateRole(ctx, 1, role.UpdateRoleDTO{Name: &newName})

			Expect(err).To(HaveOccurred())
			Expect(err).ToNot(MatchError(internal.ErrRoleNotFound))
		})
	})

	Describe("ToggleRoleActive", func() {
		It("should deactivate and reactivate a regular role", func() {
			record := mockRepo.add("operator", true)

			result, err := service.ToggleRoleActive(ctx, record.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.IsActive).To(BeFalse())

			result, err = service.ToggleRoleActive(ctx, record.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.IsActive).To(BeTrue())
		})

		It("should refuse to deactivate the superadmin role", func() {
			_, err := service.ToggleRoleActive(ctx, 1)

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeProtectedRole))
		})

		It("should allow toggling the admin role off", func() {
			result, err := service.ToggleRoleActive(ctx, 2)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.IsActive).To(BeFalse())
		})
	})

	Describe("DeleteRole", func() {
		It("should delete a role with no active users", func() {
			record := mockRepo.add("operator", true)

			err := service.DeleteRole(ctx, record.ID)

			Expect(err).ToNot(HaveOccurred())
			_, getErr := mockRepo.GetByID(record.ID)
			Expect(getErr).To(HaveOccurred())
		})

		It("should refuse to delete a protected role", func() {
			err := service.DeleteRole(ctx, 2)

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeProtectedRole))
		})

		It("should refuse while active users still carry the role", func() {
			record := mockRepo.add("operator", true)
			mockRepo.activeUserCount[record.ID] = 4

			err := service.DeleteRole(ctx, record.ID)

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRoleHasUsers))
		})
	})

	Describe("ListRoles", func() {
		It("should skip inactive roles by default", func() {
			mockRepo.add("operator", false)

			result, err := service.ListRoles(false)

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(2))
		})

		It("should include inactive roles on request with user counts", func() {
			record := mockRepo.add("operator", false)
			mockRepo.activeUserCount[record.ID] = 2

			result, err := service.ListRoles(true)

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(3))
			Expect(result[2].UserCount).To(Equal(int64(2)))
		})
	})
})
