package user_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	userDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/user"
	"github.com/servicehub/admin-backend/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Staff Module Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users  map[int64]*userDatamodel.User
	nextID int64

	getError    error
	createError error
	updateError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[int64]*userDatamodel.User),
		nextID: 1,
	}
}

func (m *mockUserRepository) add(name, email, username string, roleID int64, active bool) *userDatamodel.User {
	record := &userDatamodel.User{
		ID:       m.nextID,
		Name:     name,
		Email:    email,
		Username: username,
		RoleID:   roleID,
		IsActive: active,
	}
	m.users[record.ID] = record
	m.nextID++
	return record
}

func (m *mockUserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	record, exists := m.users[id]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *mockUserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	for _, record := range m.users {
		if record.Email == email {
			copied := *record
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) List() ([]userDatamodel.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	records := make([]userDatamodel.User, 0, len(m.users))
	for id := int64(1); id < m.nextID; id++ {
		if record, exists := m.users[id]; exists {
			records = append(records, *record)
		}
	}
	return records, nil
}

func (m *mockUserRepository) ExistsByEmail(email string) (bool, error) {
	for _, record := range m.users {
		if record.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(username string) (bool, error) {
	for _, record := range m.users {
		if record.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Create(u *userDatamodel.User) error {
	if m.createError != nil {
		return m.createError
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepository) Update(u *userDatamodel.User) error {
	if m.updateError != nil {
		return m.updateError
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

type mockRoleDirectory struct {
	roles map[int64]*roleDatamodel.Role
}

func (m *mockRoleDirectory) GetRole(roleID int64) (*roleDatamodel.Role, error) {
	role, exists := m.roles[roleID]
	if !exists {
		return nil, errors.New("role not found")
	}
	return role, nil
}

var _ = Describe("StaffService", func() {
	var (
		mockRepo  *mockUserRepository
		mockRoles *mockRoleDirectory
		service   *user.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		mockRoles = &mockRoleDirectory{roles: map[int64]*roleDatamodel.Role{
			2: {ID: 2, Name: "admin", IsActive: true},
			3: {ID: 3, Name: "operator", IsActive: true},
		}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, mockRoles, nil, bcrypt.MinCost, logger)
		ctx = context.Background()
	})

	Describe("CreateStaff", func() {
		validDTO := func() user.CreateStaffDTO {
			return user.CreateStaffDTO{
				Name:     "Siti Rahma",
				Email:    "siti@example.com",
				Username: "siti.rahma",
				Password: "long-enough-secret",
				RoleID:   3,
			}
		}

		It("should create an active account with a hashed password", func() {
			result, err := service.CreateStaff(ctx, validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.IsActive).To(BeTrue())
			Expect(result.RoleName).To(Equal("operator"))

			stored, _ := mockRepo.GetByEmail("siti@example.com")
			Expect(stored.PasswordHash).ToNot(Equal("long-enough-secret"))
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("long-enough-secret"))).To(Succeed())
		})

		It("should reject a duplicate email", func() {
			mockRepo.add("Other", "siti@example.com", "other", 3, true)

			_, err := service.CreateStaff(ctx, validDTO())

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateUser))
		})

		It("should reject a duplicate username", func() {
			mockRepo.add("Other", "other@example.com", "siti.rahma", 3, true)

			_, err := service.CreateStaff(ctx, validDTO())

			Expect(err).To(HaveOccurred())
		})

		It("should reject an unknown role", func() {
			dto := validDTO()
			dto.RoleID = 999

			_, err := service.CreateStaff(ctx, dto)

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRoleNotFound))
		})

		It("should reject a short password", func() {
			dto := validDTO()
			dto.Password = "short"

			_, err := service.CreateStaff(ctx, dto)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Exists", func() {
		It("should report a stored account", func() {
			record := mockRepo.add("Siti", "siti@example.com", "siti", 3, true)

			exists, err := service.Exists(record.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should report false for a missing account without an error", func() {
			exists, err := service.Exists(999)

			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should surface real lookup failures", func() {
			mockRepo.getError = errors.New("connection refused")

			_, err := service.Exists(1)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListStaff", func() {
		It("should attach role names to every account", func() {
			mockRepo.add("Siti", "siti@example.com", "siti", 3, true)
			mockRepo.add("Budi", "budi@example.com", "budi", 2, true)

			result, err := service.ListStaff()

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(2))
			Expect(result[0].RoleName).To(Equal("operator"))
			Expect(result[1].RoleName).To(Equal("admin"))
		})
	})

	Describe("ToggleStaffActive", func() {
		It("should flip the active flag", func() {
			record := mockRepo.add("Siti", "siti@example.com", "siti", 3, true)

			result, err := service.ToggleStaffActive(ctx, record.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.IsActive).To(BeFalse())
		})

		It("should return not found for an unknown account", func() {
			_, err := service.ToggleStaffActive(ctx, 999)

			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("should pass a repository failure through unmapped", func() {
			mockRepo.getError = errors.New("connection refused")

			_, err := service.ToggleStaffActive(ctx, 1)

			Expect(err).To(HaveOccurred())
			Expect(err).ToNot(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("AssignRole", func() {
		It("should move the account to the new role", func() {
			record := mockRepo.add("Siti", "siti@example.com", "siti", 3, true)

			result, err := service.AssignRole(ctx, record.ID, user.AssignRoleDTO{RoleID: 2})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.RoleID).To(Equal(int64(2)))
			Expect(result.RoleName).To(Equal("admin"))
		})

		It("should reject an unknown role", func() {
			record := mockRepo.add("Siti", "siti@example.com", "siti", 3, true)

			_, err := service.AssignRole(ctx, record.ID, user.AssignRoleDTO{RoleID: 999})

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRoleNotFound))
		})

		It("should reject a zero role id", func() {
			record := mockRepo.add("Siti", "siti@example.com", "siti", 3, true)

			_, err := service.AssignRole(ctx, record.ID, user.AssignRoleDTO{})

			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Request validation", func() {
	It("should accept a fully valid staff payload", func() {
		dto := user.CreateStaffDTO{
			Name:     "Dewi Anggraini",
			Email:    "dewi@example.com",
			Username: "dewi.a",
			Password: "s3cure-enough",
			RoleID:   2,
		}
		Expect(dto.Validate()).To(BeNil())
	})

	It("should accept a valid role assignment payload", func() {
		Expect(user.AssignRoleDTO{RoleID: 3}.Validate()).To(BeNil())
	})

	It("should reject a short password with a typed error", func() {
		dto := user.CreateStaffDTO{
			Name:     "Dewi Anggraini",
			Email:    "dewi@example.com",
			Username: "dewi.a",
			Password: "short",
			RoleID:   2,
		}
		appErr := dto.Validate()
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
	})
})
