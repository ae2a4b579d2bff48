package user

import (
	errors "github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/core/common/validation"
)

type CreateStaffDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	RoleID   int64  `json:"role_id"`
}

func (d CreateStaffDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(150)
	v.Field("email", d.Email).Required().MaxLength(255)
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(50)
	v.Field("password", d.Password).Required().MinLength(8)
	v.Field("role_id", d.RoleID).MinInt(1, errors.ErrCodeValidationFailed)
	return v.Validate()
}

type AssignRoleDTO struct {
	RoleID int64 `json:"role_id"`
}

func (d AssignRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("role_id", d.RoleID).MinInt(1, errors.ErrCodeValidationFailed)
	return v.Validate()
}
