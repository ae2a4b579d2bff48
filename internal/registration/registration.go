package registration

import (
	"fmt"
	"math"
	"time"

	registrationDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/registration"
)

// Registration is the admin-facing view of a provider onboarding record.
type Registration struct {
	ID                       int64     `json:"id"`
	ProviderName             string    `json:"provider_name"`
	Email                    string    `json:"email"`
	Phone                    string    `json:"phone,omitempty"`
	CurrentStep              int       `json:"current_step"`
	RegistrationStatus       string    `json:"registration_status"`
	PoliceVerificationStatus string    `json:"police_verification_status"`
	SalaryStatus             int       `json:"salary_status"`
	AccountHolderName        *string   `json:"account_holder_name,omitempty"`
	AccountNumber            *string   `json:"account_number,omitempty"`
	BankName                 *string   `json:"bank_name,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// Progress is the derived completion view over one registration record.
type Progress struct {
	RegistrationID           int64             `json:"registration_id"`
	CurrentStep              int               `json:"current_step"`
	CompletionPercentage     int               `json:"completion_percentage"`
	StepStatus               map[string]string `json:"step_status"`
	RegistrationStatus       string            `json:"registration_status"`
	PoliceVerificationStatus string            `json:"police_verification_status"`
	SalaryStatus             int               `json:"salary_status"`
}

const (
	StepCompleted = "completed"
	StepPending   = "pending"
)

// ComputeProgress projects the step booleans into the progress snapshot.
// Percentage is the rounded share of completed steps; steps carry no ordering
// requirement, so the current step pointer is reported as stored.
func ComputeProgress(r *registrationDatamodel.Registration) Progress {
	completed := 0
	stepStatus := make(map[string]string, registrationDatamodel.TotalSteps)
	for n := 1; n <= registrationDatamodel.TotalSteps; n++ {
		key := fmt.Sprintf("step%d", n)
		if r.StepCompleted(n) {
			stepStatus[key] = StepCompleted
			completed++
		} else {
			stepStatus[key] = StepPending
		}
	}

	percentage := int(math.Round(100 * float64(completed) / float64(registrationDatamodel.TotalSteps)))

	return Progress{
		RegistrationID:           r.ID,
		CurrentStep:              r.CurrentStep,
		CompletionPercentage:     percentage,
		StepStatus:               stepStatus,
		RegistrationStatus:       r.RegistrationStatus,
		PoliceVerificationStatus: r.PoliceVerificationStatus,
		SalaryStatus:             r.SalaryStatus,
	}
}

// StatusChange is one immutable row of the status audit trail.
type StatusChange struct {
	ID        int64     `json:"id"`
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedBy int64     `json:"changed_by"`
	Remarks   string    `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromDataModel(r *registrationDatamodel.Registration) Registration {
	return Registration{
		ID:                       r.ID,
		ProviderName:             r.ProviderName,
		Email:                    r.Email,
		Phone:                    r.Phone,
		CurrentStep:              r.CurrentStep,
		RegistrationStatus:       r.RegistrationStatus,
		PoliceVerificationStatus: r.PoliceVerificationStatus,
		SalaryStatus:             r.SalaryStatus,
		AccountHolderName:        r.AccountHolderName,
		AccountNumber:            r.AccountNumber,
		BankName:                 r.BankName,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

func historyFromDataModel(h *registrationDatamodel.StatusHistory) StatusChange {
	return StatusChange{
		ID:        h.ID,
		Field:     h.Field,
		OldValue:  h.OldValue,
		NewValue:  h.NewValue,
		ChangedBy: h.ChangedBy,
		Remarks:   h.Remarks,
		CreatedAt: h.CreatedAt,
	}
}
