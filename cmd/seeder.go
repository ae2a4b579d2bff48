package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	moduleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/module"
	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
	userDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the module tree, default roles and a superadmin account",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_permissions", "role_permissions", "users", "roles", "modules"} {
				if err := gormDB.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedModules(gormDB)
		superadminID, adminID := seedRoles(gormDB)
		seedAdminGrants(gormDB, adminID)
		seedSuperadminUser(gormDB, superadminID, cfg.Security.BCryptCost)

		fmt.Println("Seeding completed")
	},
}

func seedModules(db *gorm.DB) {
	roots := []moduleDatamodel.Module{
		{Name: "dashboard", Route: "/dashboard", Description: "Operational overview"},
		{Name: "providers", Route: "/providers", Description: "Service provider management"},
		{Name: "bookings", Route: "/bookings", Description: "Booking management"},
		{Name: "settings", Route: "/settings", Description: "Platform settings"},
	}

	rootIDs := make(map[string]int64, len(roots))
	for i := range roots {
		m := roots[i]
		if err := db.Where("name = ?", m.Name).FirstOrCreate(&m).Error; err != nil {
			log.Fatalf("failed to seed module %s: %v", m.Name, err)
		}
		rootIDs[m.Name] = m.ID
	}

	children := []struct {
		Parent string
		Module moduleDatamodel.Module
	}{
		{"providers", moduleDatamodel.Module{Name: "registrations", Route: "/providers/registrations", Description: "Provider onboarding"}},
		{"bookings", moduleDatamodel.Module{Name: "payments", Route: "/bookings/payments", Description: "Payment records"}},
		{"settings", moduleDatamodel.Module{Name: "modules", Route: "/settings/modules", Description: "Module tree administration"}},
		{"settings", moduleDatamodel.Module{Name: "roles", Route: "/settings/roles", Description: "Role registry"}},
		{"settings", moduleDatamodel.Module{Name: "staff", Route: "/settings/staff", Description: "Staff accounts"}},
	}

	for _, c := range children {
		parentID := rootIDs[c.Parent]
		m := c.Module
		m.ParentID = &parentID
		if err := db.Where("name = ?", m.Name).FirstOrCreate(&m).Error; err != nil {
			log.Fatalf("failed to seed module %s: %v", m.Name, err)
		}
	}

	fmt.Println("Seeded module tree")
}

func seedRoles(db *gorm.DB) (superadminID, adminID int64) {
	superadmin := roleDatamodel.Role{Name: roleDatamodel.NameSuperadmin, Description: "Full platform access", IsActive: true}
	if err := db.Where("name = ?", superadmin.Name).FirstOrCreate(&superadmin).Error; err != nil {
		log.Fatalf("failed to seed superadmin role: %v", err)
	}

	admin := roleDatamodel.Role{Name: roleDatamodel.NameAdmin, Description: "Platform administrator", IsActive: true}
	if err := db.Where("name = ?", admin.Name).FirstOrCreate(&admin).Error; err != nil {
		log.Fatalf("failed to seed admin role: %v", err)
	}

	fmt.Println("Seeded default roles")
	return superadmin.ID, admin.ID
}

// seedAdminGrants gives the admin role full grants on every module. The
// superadmin role needs no rows; resolution short-circuits for it.
func seedAdminGrants(db *gorm.DB, adminID int64) {
	var modules []moduleDatamodel.Module
	if err := db.Find(&modules).Error; err != nil {
		log.Fatalf("failed to list modules: %v", err)
	}

	for _, m := range modules {
		grant := roleDatamodel.RolePermission{
			RoleID:    adminID,
			ModuleID:  m.ID,
			CanView:   true,
			CanAdd:    true,
			CanEdit:   true,
			CanDelete: true,
		}
		if err := db.Where("role_id = ? AND module_id = ?", adminID, m.ID).FirstOrCreate(&grant).Error; err != nil {
			log.Fatalf("failed to seed grant for module %s: %v", m.Name, err)
		}
	}

	fmt.Println("Granted full access to admin role")
}

func seedSuperadminUser(db *gorm.DB, superadminRoleID int64, bcryptCost int) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	u := userDatamodel.User{
		Name:         "Platform Superadmin",
		Email:        "superadmin@servicehub.id",
		Username:     "superadmin",
		PasswordHash: string(hash),
		RoleID:       superadminRoleID,
		IsActive:     true,
	}
	if err := db.Where("email = ?", u.Email).FirstOrCreate(&u).Error; err != nil {
		log.Fatalf("failed to seed superadmin user: %v", err)
	}

	fmt.Println("Seeded superadmin user:", u.Email)
}
