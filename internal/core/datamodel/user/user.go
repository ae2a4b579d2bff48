package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	RoleID       int64     `gorm:"column:role_id;index;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

// UserPermission is a per-user override for one module. When present it fully
// replaces the role default for that module; absence means "defer to role".
type UserPermission struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex:idx_user_module;not null"`
	ModuleID  int64     `gorm:"column:module_id;uniqueIndex:idx_user_module;not null"`
	CanView   bool      `gorm:"column:can_view;default:false"`
	CanAdd    bool      `gorm:"column:can_add;default:false"`
	CanEdit   bool      `gorm:"column:can_edit;default:false"`
	CanDelete bool      `gorm:"column:can_delete;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
