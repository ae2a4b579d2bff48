package role

import (
	"time"

	roleDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/role"
)

// Role is the registry view returned to callers.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	IsProtected bool      `json:"is_protected"`
	UserCount   int64     `json:"user_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(r *roleDatamodel.Role, userCount int64) Role {
	return Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		IsProtected: r.IsProtected(),
		UserCount:   userCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
