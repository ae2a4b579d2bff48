package registration

import (
	errors "github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/core/common/validation"
	registrationDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/registration"
)

type CreateRegistrationDTO struct {
	ProviderName string `json:"provider_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

func (d CreateRegistrationDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("provider_name", d.ProviderName).Required().MaxLength(150)
	v.Field("email", d.Email).Required().MaxLength(255)
	v.Field("phone", d.Phone).MaxLength(30)
	return v.Validate()
}

type UpdateStatusDTO struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

func (d UpdateStatusDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(
		registrationDatamodel.StatusDraft,
		registrationDatamodel.StatusSubmitted,
		registrationDatamodel.StatusUnderReview,
		registrationDatamodel.StatusApproved,
		registrationDatamodel.StatusRejected,
		registrationDatamodel.StatusPendingDocuments,
	)
	v.Field("remarks", d.Remarks).MaxLength(500)
	return v.Validate()
}

type UpdatePoliceVerificationDTO struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

func (d UpdatePoliceVerificationDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(
		registrationDatamodel.PoliceVerificationNotSubmitted,
		registrationDatamodel.PoliceVerificationPending,
		registrationDatamodel.PoliceVerificationApproved,
		registrationDatamodel.PoliceVerificationRejected,
	)
	v.Field("remarks", d.Remarks).MaxLength(500)
	return v.Validate()
}

type UpdateSalaryStatusDTO struct {
	Status  int    `json:"status"`
	Remarks string `json:"remarks"`
}

func (d UpdateSalaryStatusDTO) Validate() *errors.AppError {
	switch d.Status {
	case registrationDatamodel.SalaryStatusPending,
		registrationDatamodel.SalaryStatusApproved,
		registrationDatamodel.SalaryStatusRejected:
	default:
		return errors.NewValidationError("salary status must be 0, 1 or 2", errors.ErrCodeValidationFailed)
	}
	v := validation.NewValidator()
	v.Field("remarks", d.Remarks).MaxLength(500)
	return v.Validate()
}

type FinalizeRegistrationDTO struct {
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	BankName          string `json:"bank_name"`
}

func (d FinalizeRegistrationDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("account_holder_name", d.AccountHolderName).Required().MaxLength(150)
	v.Field("account_number", d.AccountNumber).Required().MaxLength(50)
	v.Field("bank_name", d.BankName).Required().MaxLength(100)
	return v.Validate()
}
