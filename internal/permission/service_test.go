package permission_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	"github.com/servicehub/admin-backend/internal/core/events"
	"github.com/servicehub/admin-backend/internal/permission"
)

type grantPublisher struct {
	published []events.Event
}

func (p *grantPublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

type mockRoleDirectory struct {
	roles    map[int64]*roleDatamodel.Role
	getError error
}

func (m *mockRoleDirectory) GetRole(roleID int64) (*roleDatamodel.Role, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	role, exists := m.roles[roleID]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

type mockUserDirectory struct {
	existing  map[int64]bool
	existsErr error
}

func (m *mockUserDirectory) Exists(userID int64) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[userID], nil
}

var _ = Describe("PermissionService", func() {
	var (
		mockRepo  *mockPermissionRepository
		mockRoles *mockRoleDirectory
		mockUsers *mockUserDirectory
		service   *permission.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockPermissionRepository()
		mockRepo.addModule(10, "dashboard", nil)
		mockRepo.addModule(20, "settings", nil)
		mockRepo.addModule(21, "staff", int64Ptr(20))

		mockRoles = &mockRoleDirectory{roles: map[int64]*roleDatamodel.Role{
			2: {ID: 2, Name: "operator", IsActive: true},
		}}
		mockUsers = &mockUserDirectory{existing: map[int64]bool{100: true}}

		service = permission.NewService(mockRepo, mockRoles, mockUsers, nil, nil, testLogger())
		ctx = context.Background()
	})

	Describe("SetRolePermissions", func() {
		Context("when the role does not exist", func() {
			It("should return role not found", func() {
				err := service.SetRolePermissions(ctx, 999, nil)

				Expect(err).To(MatchError(internal.ErrRoleNotFound))
			})
		})

		Context("when the role lookup itself fails", func() {
			It("should pass the failure through unmapped", func() {
				mockRoles.getError = errors.New("connection refused")

				err := service.SetRolePermissions(ctx, 2, nil)

				Expect(err).To(HaveOccurred())
				Expect(err).ToNot(MatchError(internal.ErrRoleNotFound))
			})
		})

		Context("when the payload repeats a module", func() {
			It("should reject the whole replacement", func() {
				grants := []permission.ModuleGrantDTO{
					{ModuleID: 10, CanView: true},
					{ModuleID: 10, CanAdd: true},
				}

				err := service.SetRolePermissions(ctx, 2, grants)

				var appErr *internal.AppError
				Expect(errors.As(err, &appErr)).To(BeTrue())
				Expect(mockRepo.replacedRows).To(BeNil())
			})
		})

		Context("when grants carry no true capability", func() {
			It("should drop them instead of storing deny rows", func() {
				grants := []permission.ModuleGrantDTO{
					{ModuleID: 10, CanView: true, CanEdit: true},
					{ModuleID: 20},
				}

				err := service.SetRolePermissions(ctx, 2, grants)

				Expect(err).ToNot(HaveOccurred())
				Expect(mockRepo.replacedRows).To(HaveLen(1))
				Expect(mockRepo.replacedRows[0].ModuleID).To(Equal(int64(10)))
			})
		})

		Context("when replacing an existing grant set", func() {
			It("should leave only the new rows behind", func() {
				mockRepo.addRoleGrant(2, 10, true, true, true, true)
				mockRepo.addRoleGrant(2, 20, true, false, false, false)

				grants := []permission.ModuleGrantDTO{
					{ModuleID: 21, CanView: true},
				}

				err := service.SetRolePermissions(ctx, 2, grants)

				Expect(err).ToNot(HaveOccurred())
				rows, _ := mockRepo.ListRolePermissions(2)
				Expect(rows).To(HaveLen(1))
				Expect(rows[0].ModuleID).To(Equal(int64(21)))
			})

			It("should announce the replacement on the bus", func() {
				publisher := &grantPublisher{}
				wired := permission.NewService(mockRepo, mockRoles, mockUsers, nil, publisher, testLogger())

				grants := []permission.ModuleGrantDTO{
					{ModuleID: 10, CanView: true},
					{ModuleID: 21, CanView: true, CanEdit: true},
				}

				err := wired.SetRolePermissions(ctx, 2, grants)

				Expect(err).ToNot(HaveOccurred())
				Expect(publisher.published).To(HaveLen(1))
				replaced, ok := publisher.published[0].(*events.PermissionsReplacedEvent)
				Expect(ok).To(BeTrue())
				Expect(replaced.RoleID).To(Equal(int64(2)))
				Expect(replaced.GrantCount).To(Equal(2))
			})

			It("should accept an empty payload as a full revoke", func() {
				mockRepo.addRoleGrant(2, 10, true, true, true, true)

				err := service.SetRolePermissions(ctx, 2, nil)

				Expect(err).ToNot(HaveOccurred())
				rows, _ := mockRepo.ListRolePermissions(2)
				Expect(rows).To(BeEmpty())
			})
		})

		Context("when the repository write fails", func() {
			It("should propagate the error", func() {
				mockRepo.writeError = errors.New("deadlock detected")

				err := service.SetRolePermissions(ctx, 2, []permission.ModuleGrantDTO{{ModuleID: 10, CanView: true}})

				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("SetUserPermissionOverride", func() {
		Context("when the user does not exist", func() {
			It("should return user not found", func() {
				err := service.SetUserPermissionOverride(ctx, 999, 10, permission.Grants{CanView: true})

				Expect(err).To(MatchError(internal.ErrUserNotFound))
			})
		})

		Context("when the module does not exist", func() {
			It("should return module not found", func() {
				err := service.SetUserPermissionOverride(ctx, 100, 999, permission.Grants{CanView: true})

				Expect(err).To(MatchError(internal.ErrModuleNotFound))
			})
		})

		Context("when at least one capability is granted", func() {
			It("should upsert the override row", func() {
				err := service.SetUserPermissionOverride(ctx, 100, 10, permission.Grants{CanView: true, CanDelete: true})

				Expect(err).ToNot(HaveOccurred())
				Expect(mockRepo.upsertedRow).ToNot(BeNil())
				Expect(mockRepo.upsertedRow.UserID).To(Equal(int64(100)))
				Expect(mockRepo.upsertedRow.ModuleID).To(Equal(int64(10)))
				Expect(mockRepo.upsertedRow.CanView).To(BeTrue())
				Expect(mockRepo.upsertedRow.CanAdd).To(BeFalse())
				Expect(mockRepo.upsertedRow.CanDelete).To(BeTrue())
			})
		})

		Context("when every capability is false", func() {
			It("should delete the override so the role default applies again", func() {
				mockRepo.addUserGrant(100, 10, true, false, false, false)

				err := service.SetUserPermissionOverride(ctx, 100, 10, permission.Grants{})

				Expect(err).ToNot(HaveOccurred())
				Expect(mockRepo.upsertedRow).To(BeNil())
				row, _ := mockRepo.GetUserPermission(100, 10)
				Expect(row).To(BeNil())
			})

			It("should succeed even when no override was stored", func() {
				err := service.SetUserPermissionOverride(ctx, 100, 10, permission.Grants{})

				Expect(err).ToNot(HaveOccurred())
			})
		})
	})

	Describe("GetRolePermissions", func() {
		Context("when the role does not exist", func() {
			It("should return role not found", func() {
				_, err := service.GetRolePermissions(999)

				Expect(err).To(MatchError(internal.ErrRoleNotFound))
			})
		})

		Context("when the role has stored grants", func() {
			It("should return them in hierarchy order with labels", func() {
				mockRepo.addRoleGrant(2, 21, true, false, false, false)
				mockRepo.addRoleGrant(2, 10, true, true, false, false)

				result, err := service.GetRolePermissions(2)

				Expect(err).ToNot(HaveOccurred())
				Expect(result).To(HaveLen(2))
				Expect(result[0].ModuleName).To(Equal("dashboard"))
				Expect(result[1].ModuleName).To(Equal("staff"))
				Expect(result[1].Label).To(Equal("settings → staff"))
			})

			It("should skip modules without a grant row", func() {
				mockRepo.addRoleGrant(2, 10, true, false, false, false)

				result, err := service.GetRolePermissions(2)

				Expect(err).ToNot(HaveOccurred())
				Expect(result).To(HaveLen(1))
				Expect(result[0].ModuleID).To(Equal(int64(10)))
			})
		})
	})

	Describe("GetUserPermissions", func() {
		Context("when the user does not exist", func() {
			It("should return user not found", func() {
				_, err := service.GetUserPermissions(999)

				Expect(err).To(MatchError(internal.ErrUserNotFound))
			})
		})

		Context("when the user has override rows", func() {
			It("should return only the overridden modules", func() {
				mockRepo.addUserGrant(100, 20, true, true, false, false)

				result, err := service.GetUserPermissions(100)

				Expect(err).ToNot(HaveOccurred())
				Expect(result).To(HaveLen(1))
				Expect(result[0].ModuleName).To(Equal("settings"))
				Expect(result[0].CanAdd).To(BeTrue())
			})
		})
	})
})
