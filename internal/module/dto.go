package module

import (
	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/core/common/validation"
)

type CreateModuleDTO struct {
	Name        string `json:"name"`
	Route       string `json:"route"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id,omitempty"`
}

func (d *CreateModuleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("route", d.Route).Required().MaxLength(255)
	v.Field("description", d.Description).MaxLength(500)
	return v.Validate()
}

type ReparentModuleDTO struct {
	ParentID *int64 `json:"parent_id"`
}
