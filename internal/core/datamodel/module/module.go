package module

import "time"

// Module is one grantable feature area. ParentID is nil for root modules;
// nesting is at most one level deep, enforced by the module service.
type Module struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Route       string    `gorm:"column:route;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	ParentID    *int64    `gorm:"column:parent_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Module) TableName() string {
	return "modules"
}
