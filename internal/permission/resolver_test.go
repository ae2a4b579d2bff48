package permission_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/servicehub/admin-backend/internal"
	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	userDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/user"
	"github.com/servicehub/admin-backend/internal/permission"
)

func TestPermission(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Module Suite")
}

type grantPair struct {
	left  int64
	right int64
}

// Mock repository for testing
type mockPermissionRepository struct {
	modulesByName map[string]*moduleDatamodel.Module
	modulesByID   map[int64]*moduleDatamodel.Module
	moduleOrder   []int64
	roleRows      map[grantPair]*roleDatamodel.RolePermission
	userRows      map[grantPair]*userDatamodel.UserPermission
	rolesByID     map[int64]*roleDatamodel.Role

	replacedRoleID int64
	replacedRows   []roleDatamodel.RolePermission
	upsertedRow    *userDatamodel.UserPermission
	deletedPairs   []grantPair

	getError     error
	listError    error
	writeError   error
	roleGetError error
}

func newMockPermissionRepository() *mockPermissionRepository {
	return &mockPermissionRepository{
		modulesByName: make(map[string]*moduleDatamodel.Module),
		modulesByID:   make(map[int64]*moduleDatamodel.Module),
		roleRows:      make(map[grantPair]*roleDatamodel.RolePermission),
		userRows:      make(map[grantPair]*userDatamodel.UserPermission),
		rolesByID:     make(map[int64]*roleDatamodel.Role),
	}
}

func (m *mockPermissionRepository) addModule(id int64, name string, parentID *int64) {
	mod := &moduleDatamodel.Module{ID: id, Name: name, Route: "/" + name, ParentID: parentID}
	m.modulesByName[name] = mod
	m.modulesByID[id] = mod
	m.moduleOrder = append(m.moduleOrder, id)
}

func (m *mockPermissionRepository) addRole(id int64, name string, active bool) {
	m.rolesByID[id] = &roleDatamodel.Role{ID: id, Name: name, IsActive: active}
}

func (m *mockPermissionRepository) addRoleGrant(roleID, moduleID int64, view, add, edit, del bool) {
	m.roleRows[grantPair{roleID, moduleID}] = &roleDatamodel.RolePermission{
		RoleID: roleID, ModuleID: moduleID,
		CanView: view, CanAdd: add, CanEdit: edit, CanDelete: del,
	}
}

func (m *mockPermissionRepository) addUserGrant(userID, moduleID int64, view, add, edit, del bool) {
	m.userRows[grantPair{userID, moduleID}] = &userDatamodel.UserPermission{
		UserID: userID, ModuleID: moduleID,
		CanView: view, CanAdd: add, CanEdit: edit, CanDelete: del,
	}
}

func (m *mockPermissionRepository) GetUserPermission(userID, moduleID int64) (*userDatamodel.UserPermission, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.userRows[grantPair{userID, moduleID}], nil
}

func (m *mockPermissionRepository) GetRolePermission(roleID, moduleID int64) (*roleDatamodel.RolePermission, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.roleRows[grantPair{roleID, moduleID}], nil
}

func (m *mockPermissionRepository) ListUserPermissions(userID int64) ([]userDatamodel.UserPermission, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var rows []userDatamodel.UserPermission
	for key, row := range m.userRows {
		if key.left == userID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (m *mockPermissionRepository) ListRolePermissions(roleID int64) ([]roleDatamodel.RolePermission, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var rows []roleDatamodel.RolePermission
	for key, row := range m.roleRows {
		if key.left == roleID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (m *mockPermissionRepository) ReplaceRolePermissions(roleID int64, rows []roleDatamodel.RolePermission) error {
	if m.writeError != nil {
		return m.writeError
	}
	for key := range m.roleRows {
		if key.left == roleID {
			delete(m.roleRows, key)
		}
	}
	for i := range rows {
		row := rows[i]
		m.roleRows[grantPair{row.RoleID, row.ModuleID}] = &row
	}
	m.replacedRoleID = roleID
	m.replacedRows = rows
	return nil
}

func (m *mockPermissionRepository) UpsertUserPermission(row *userDatamodel.UserPermission) error {
	if m.writeError != nil {
		return m.writeError
	}
	m.userRows[grantPair{row.UserID, row.ModuleID}] = row
	m.upsertedRow = row
	return nil
}

func (m *mockPermissionRepository) DeleteUserPermission(userID, moduleID int64) error {
	if m.writeError != nil {
		return m.writeError
	}
	delete(m.userRows, grantPair{userID, moduleID})
	m.deletedPairs = append(m.deletedPairs, grantPair{userID, moduleID})
	return nil
}

func (m *mockPermissionRepository) GetModuleByName(name string) (*moduleDatamodel.Module, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.modulesByName[name], nil
}

func (m *mockPermissionRepository) GetModuleByID(id int64) (*moduleDatamodel.Module, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.modulesByID[id], nil
}

func (m *mockPermissionRepository) ListModules() ([]moduleDatamodel.Module, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	modules := make([]moduleDatamodel.Module, 0, len(m.moduleOrder))
	for _, id := range m.moduleOrder {
		modules = append(modules, *m.modulesByID[id])
	}
	return modules, nil
}

func (m *mockPermissionRepository) GetRoleByID(roleID int64) (*roleDatamodel.Role, error) {
	if m.roleGetError != nil {
		return nil, m.roleGetError
	}
	return m.rolesByID[roleID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func int64Ptr(v int64) *int64 {
	return &v
}

var _ = Describe("Resolver", func() {
	var (
		mockRepo *mockPermissionRepository
		resolver *permission.Resolver
		identity *internal.Identity
	)

	BeforeEach(func() {
		mockRepo = newMockPermissionRepository()
		mockRepo.addRole(1, roleDatamodel.NameSuperadmin, true)
		mockRepo.addRole(2, "operator", true)
		mockRepo.addModule(10, "dashboard", nil)
		mockRepo.addModule(20, "settings", nil)
		mockRepo.addModule(21, "staff", int64Ptr(20))

		resolver = permission.NewResolver(mockRepo, false, testLogger())
		identity = &internal.Identity{UserID: 100, RoleID: 2, RoleName: "operator"}
	})

	Describe("Resolve", func() {
		Context("when the capability name is unknown", func() {
			It("should return a validation error", func() {
				allowed, err := resolver.Resolve(identity, "dashboard", "can_fly")

				Expect(allowed).To(BeFalse())
				var appErr *internal.AppError
				Expect(errors.As(err, &appErr)).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidCapability))
			})

			It("should reject the capability even for a superadmin", func() {
				superadmin := &internal.Identity{UserID: 1, RoleID: 1, RoleName: roleDatamodel.NameSuperadmin}

				allowed, err := resolver.Resolve(superadmin, "dashboard", "can_fly")

				Expect(allowed).To(BeFalse())
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when the identity is a superadmin", func() {
			It("should allow everything without any grant rows", func() {
				superadmin := &internal.Identity{UserID: 1, RoleID: 1, RoleName: roleDatamodel.NameSuperadmin}

				for _, capability := range []string{"can_view", "can_add", "can_edit", "can_delete"} {
					allowed, err := resolver.Resolve(superadmin, "dashboard", capability)
					Expect(err).ToNot(HaveOccurred())
					Expect(allowed).To(BeTrue())
				}
			})

			It("should short-circuit before the module lookup", func() {
				superadmin := &internal.Identity{UserID: 1, RoleID: 1, RoleName: roleDatamodel.NameSuperadmin}

				allowed, err := resolver.Resolve(superadmin, "no_such_module", "can_view")

				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeTrue())
			})
		})

		Context("when the module does not exist", func() {
			It("should return module not found", func() {
				allowed, err := resolver.Resolve(identity, "no_such_module", "can_view")

				Expect(allowed).To(BeFalse())
				Expect(err).To(MatchError(internal.ErrModuleNotFound))
			})
		})

		Context("when no grant rows exist", func() {
			It("should deny every capability", func() {
				for _, capability := range []string{"can_view", "can_add", "can_edit", "can_delete"} {
					allowed, err := resolver.Resolve(identity, "dashboard", capability)
					Expect(err).ToNot(HaveOccurred())
					Expect(allowed).To(BeFalse())
				}
			})
		})

		Context("when only a role default exists", func() {
			It("should resolve from the role default", func() {
				mockRepo.addRoleGrant(2, 10, true, true, false, false)

				allowed, err := resolver.Resolve(identity, "dashboard", "can_add")
				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeTrue())

				allowed, err = resolver.Resolve(identity, "dashboard", "can_delete")
				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeFalse())
			})
		})

		Context("when a user override exists", func() {
			It("should replace the role default wholesale, not merge with it", func() {
				mockRepo.addRoleGrant(2, 10, true, true, true, true)
				mockRepo.addUserGrant(100, 10, true, false, false, false)

				allowed, err := resolver.Resolve(identity, "dashboard", "can_view")
				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeTrue())

				// The role default grants edit, but the override says no.
				allowed, err = resolver.Resolve(identity, "dashboard", "can_edit")
				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeFalse())
			})

			It("should grant capabilities the role default never had", func() {
				mockRepo.addUserGrant(100, 21, false, false, false, true)

				allowed, err := resolver.Resolve(identity, "staff", "can_delete")
				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeTrue())
			})

			It("should leave other modules on the role default", func() {
				mockRepo.addRoleGrant(2, 20, true, false, false, false)
				mockRepo.addUserGrant(100, 10, false, false, false, false)

				allowed, err := resolver.Resolve(identity, "settings", "can_view")
				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeTrue())
			})
		})

		Context("when the role is deactivated", func() {
			BeforeEach(func() {
				mockRepo.addRole(2, "operator", false)
				mockRepo.addRoleGrant(2, 10, true, true, true, true)
			})

			It("should keep applying role defaults under the default policy", func() {
				allowed, err := resolver.Resolve(identity, "dashboard", "can_view")

				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeTrue())
			})

			It("should drop the role layer when ignore_inactive_roles is on", func() {
				strict := permission.NewResolver(mockRepo, true, testLogger())

				allowed, err := strict.Resolve(identity, "dashboard", "can_view")

				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeFalse())
			})

			It("should still honor user overrides when the role layer is off", func() {
				mockRepo.addUserGrant(100, 10, false, false, true, false)
				strict := permission.NewResolver(mockRepo, true, testLogger())

				allowed, err := strict.Resolve(identity, "dashboard", "can_edit")

				Expect(err).ToNot(HaveOccurred())
				Expect(allowed).To(BeTrue())
			})
		})

		Context("when the repository fails", func() {
			It("should propagate the error", func() {
				mockRepo.getError = errors.New("connection refused")

				_, err := resolver.Resolve(identity, "dashboard", "can_view")

				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("ResolveAll", func() {
		BeforeEach(func() {
			// Deliberately registered out of name order.
			mockRepo = newMockPermissionRepository()
			mockRepo.addRole(2, "operator", true)
			mockRepo.addModule(20, "settings", nil)
			mockRepo.addModule(21, "staff", int64Ptr(20))
			mockRepo.addModule(22, "modules", int64Ptr(20))
			mockRepo.addModule(10, "dashboard", nil)
			mockRepo.addModule(30, "bookings", nil)
			mockRepo.addModule(31, "payments", int64Ptr(30))

			resolver = permission.NewResolver(mockRepo, false, testLogger())
		})

		It("should return one entry per module, zero-grant modules included", func() {
			mockRepo.addRoleGrant(2, 10, true, false, false, false)

			matrix, err := resolver.ResolveAll(identity)

			Expect(err).ToNot(HaveOccurred())
			Expect(matrix).To(HaveLen(6))

			byName := make(map[string]permission.ModulePermission)
			for _, entry := range matrix {
				byName[entry.ModuleName] = entry
			}
			Expect(byName["dashboard"].CanView).To(BeTrue())
			Expect(byName["payments"].Grants.Any()).To(BeFalse())
		})

		It("should order roots by name with children right after their parent", func() {
			matrix, err := resolver.ResolveAll(identity)

			Expect(err).ToNot(HaveOccurred())

			names := make([]string, 0, len(matrix))
			for _, entry := range matrix {
				names = append(names, entry.ModuleName)
			}
			Expect(names).To(Equal([]string{
				"bookings", "payments",
				"dashboard",
				"settings", "modules", "staff",
			}))
		})

		It("should render hierarchy labels from the parent name", func() {
			matrix, err := resolver.ResolveAll(identity)

			Expect(err).ToNot(HaveOccurred())

			byName := make(map[string]permission.ModulePermission)
			for _, entry := range matrix {
				byName[entry.ModuleName] = entry
			}
			Expect(byName["dashboard"].Label).To(Equal("dashboard"))
			Expect(byName["staff"].Label).To(Equal("settings → staff"))
			Expect(byName["payments"].Label).To(Equal("bookings → payments"))
		})

		It("should overlay user overrides on role defaults per module", func() {
			mockRepo.addRoleGrant(2, 20, true, true, true, true)
			mockRepo.addRoleGrant(2, 21, true, true, false, false)
			mockRepo.addUserGrant(100, 21, true, false, false, false)

			matrix, err := resolver.ResolveAll(identity)

			Expect(err).ToNot(HaveOccurred())

			byName := make(map[string]permission.ModulePermission)
			for _, entry := range matrix {
				byName[entry.ModuleName] = entry
			}
			Expect(byName["settings"].CanEdit).To(BeTrue())
			Expect(byName["staff"].CanView).To(BeTrue())
			Expect(byName["staff"].CanAdd).To(BeFalse())
		})

		It("should give a superadmin full grants on every module", func() {
			superadmin := &internal.Identity{UserID: 1, RoleID: 1, RoleName: roleDatamodel.NameSuperadmin}

			matrix, err := resolver.ResolveAll(superadmin)

			Expect(err).ToNot(HaveOccurred())
			Expect(matrix).To(HaveLen(6))
			for _, entry := range matrix {
				Expect(entry.Grants).To(Equal(permission.FullGrants))
			}
		})

		It("should append modules whose parent row is missing", func() {
			mockRepo.addModule(99, "orphaned", int64Ptr(500))

			matrix, err := resolver.ResolveAll(identity)

			Expect(err).ToNot(HaveOccurred())
			Expect(matrix).To(HaveLen(7))
			Expect(matrix[len(matrix)-1].ModuleName).To(Equal("orphaned"))
		})
	})
})
