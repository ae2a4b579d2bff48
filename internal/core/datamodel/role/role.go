package role

import "time"

const (
	NameSuperadmin = "superadmin"
	NameAdmin      = "admin"
)

type Role struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Role) TableName() string {
	return "roles"
}

// IsProtected reports whether the role carries one of the two reserved names
// whose rows may never be edited or deleted.
func (r *Role) IsProtected() bool {
	return r.Name == NameSuperadmin || r.Name == NameAdmin
}

// RolePermission is the default grant for every user carrying the role.
// Only rows with at least one true capability are stored.
type RolePermission struct {
	ID        int64     `gorm:"primaryKey"`
	RoleID    int64     `gorm:"column:role_id;uniqueIndex:idx_role_module;not null"`
	ModuleID  int64     `gorm:"column:module_id;uniqueIndex:idx_role_module;not null"`
	CanView   bool      `gorm:"column:can_view;default:false"`
	CanAdd    bool      `gorm:"column:can_add;default:false"`
	CanEdit   bool      `gorm:"column:can_edit;default:false"`
	CanDelete bool      `gorm:"column:can_delete;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
