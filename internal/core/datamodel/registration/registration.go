package registration

import "time"

const TotalSteps = 6

// Registration statuses. Transitions are deliberately unconstrained: an
// operator may move a record out of approved/rejected.
const (
	StatusDraft            = "draft"
	StatusSubmitted        = "submitted"
	StatusUnderReview      = "under_review"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
	StatusPendingDocuments = "pending_documents"
)

const (
	PoliceVerificationNotSubmitted = "not_submitted"
	PoliceVerificationPending      = "pending"
	PoliceVerificationApproved     = "approved"
	PoliceVerificationRejected     = "rejected"
)

// Salary approval track, stored as the platform's legacy numeric codes.
const (
	SalaryStatusPending  = 0
	SalaryStatusApproved = 1
	SalaryStatusRejected = 2
)

type Registration struct {
	ID                       int64     `gorm:"primaryKey"`
	ProviderName             string    `gorm:"column:provider_name;not null"`
	Email                    string    `gorm:"column:email;uniqueIndex;not null"`
	Phone                    string    `gorm:"column:phone"`
	Step1Completed           bool      `gorm:"column:step1_completed;default:false"`
	Step2Completed           bool      `gorm:"column:step2_completed;default:false"`
	Step3Completed           bool      `gorm:"column:step3_completed;default:false"`
	Step4Completed           bool      `gorm:"column:step4_completed;default:false"`
	Step5Completed           bool      `gorm:"column:step5_completed;default:false"`
	Step6Completed           bool      `gorm:"column:step6_completed;default:false"`
	CurrentStep              int       `gorm:"column:current_step;default:1"`
	RegistrationStatus       string    `gorm:"column:registration_status;default:draft"`
	PoliceVerificationStatus string    `gorm:"column:police_verification_status;default:not_submitted"`
	SalaryStatus             int       `gorm:"column:salary_status;default:0"`
	AccountHolderName        *string   `gorm:"column:account_holder_name"`
	AccountNumber            *string   `gorm:"column:account_number"`
	BankName                 *string   `gorm:"column:bank_name"`
	CreatedAt                time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt                time.Time `gorm:"column:updated_at;default:now()"`
}

func (Registration) TableName() string {
	return "provider_registrations"
}

// StepCompleted reports the completion flag for step n (1-based). Unknown
// steps read as false.
func (r *Registration) StepCompleted(n int) bool {
	switch n {
	case 1:
		return r.Step1Completed
	case 2:
		return r.Step2Completed
	case 3:
		return r.Step3Completed
	case 4:
		return r.Step4Completed
	case 5:
		return r.Step5Completed
	case 6:
		return r.Step6Completed
	}
	return false
}

// StatusHistory is the append-only audit trail for the three status tracks.
// Rows are never updated or deleted.
type StatusHistory struct {
	ID             int64     `gorm:"primaryKey"`
	RegistrationID int64     `gorm:"column:registration_id;index;not null"`
	Field          string    `gorm:"column:field;not null"`
	OldValue       string    `gorm:"column:old_value"`
	NewValue       string    `gorm:"column:new_value;not null"`
	ChangedBy      int64     `gorm:"column:changed_by"`
	Remarks        string    `gorm:"column:remarks"`
	CreatedAt      time.Time `gorm:"column:created_at;default:now()"`
}

func (StatusHistory) TableName() string {
	return "registration_status_history"
}
