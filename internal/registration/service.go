package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/activitylog"
	registrationDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/registration"
	"github.com/servicehub/admin-backend/internal/core/events"
)

// Repository defines the data access methods for provider registrations.
// UpdateWithHistory persists the record and its history row atomically.
type Repository interface {
	GetByID(id int64) (*registrationDatamodel.Registration, error)
	List(status string, limit, offset int) ([]registrationDatamodel.Registration, int64, error)
	ExistsByEmail(email string) (bool, error)
	Create(r *registrationDatamodel.Registration) error
	Update(r *registrationDatamodel.Registration) error
	UpdateWithHistory(r *registrationDatamodel.Registration, h *registrationDatamodel.StatusHistory) error
	ListHistory(registrationID int64) ([]registrationDatamodel.StatusHistory, error)
}

type Service struct {
	repo     Repository
	activity activitylog.Recorder
	bus      events.Publisher
	logger   *slog.Logger
}

func NewService(repo Repository, activity activitylog.Recorder, bus events.Publisher, logger *slog.Logger) *Service {
	if activity == nil {
		activity = activitylog.NopRecorder{}
	}
	return &Service{
		repo:     repo,
		activity: activity,
		bus:      bus,
		logger:   logger,
	}
}

func (s *Service) CreateRegistration(ctx context.Context, dto CreateRegistrationDTO) (*Registration, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(dto.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, internal.NewConflictError("a registration with this email already exists", internal.ErrCodeDuplicateRegistration)
	}

	record := &registrationDatamodel.Registration{
		ProviderName:             dto.ProviderName,
		Email:                    dto.Email,
		Phone:                    dto.Phone,
		CurrentStep:              1,
		RegistrationStatus:       registrationDatamodel.StatusDraft,
		PoliceVerificationStatus: registrationDatamodel.PoliceVerificationNotSubmitted,
		SalaryStatus:             registrationDatamodel.SalaryStatusPending,
	}

	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create registration", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("registration created", "registration_id", record.ID, "provider", record.ProviderName)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "create",
		Entity:   "registration",
		EntityID: record.ID,
		NewValue: record.ProviderName,
	})

	result := FromDataModel(record)
	return &result, nil
}

func (s *Service) GetRegistration(id int64) (*Registration, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}
	result := FromDataModel(record)
	return &result, nil
}

func (s *Service) ListRegistrations(status string, limit, offset int) ([]Registration, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.repo.List(status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list registrations", "error", err)
		return nil, 0, err
	}

	result := make([]Registration, 0, len(records))
	for i := range records {
		result = append(result, FromDataModel(&records[i]))
	}
	return result, total, nil
}

// GetProgress derives the completion snapshot for one registration.
func (s *Service) GetProgress(id int64) (*Progress, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}
	progress := ComputeProgress(record)
	return &progress, nil
}

// CompleteStep marks step n as done and moves the step pointer past it.
// Steps carry no ordering requirement; the last writer owns the pointer.
func (s *Service) CompleteStep(ctx context.Context, id int64, step int) (*Progress, error) {
	if step < 1 || step > registrationDatamodel.TotalSteps {
		return nil, internal.NewValidationError(
			fmt.Sprintf("step must be between 1 and %d", registrationDatamodel.TotalSteps),
			internal.ErrCodeInvalidStep,
		)
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}

	setStepCompleted(record, step)
	record.CurrentStep = step
	if step < registrationDatamodel.TotalSteps {
		record.CurrentStep = step + 1
	}

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to complete step", "error", err, "registration_id", id, "step", step)
		return nil, err
	}

	s.logger.Info("registration step completed", "registration_id", id, "step", step, "current_step", record.CurrentStep)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "complete_step",
		Entity:   "registration",
		EntityID: id,
		NewValue: fmt.Sprintf("step%d", step),
	})

	progress := ComputeProgress(record)
	return &progress, nil
}

// UpdateStatus moves the overall registration status. Transitions are free,
// including out of approved and rejected; every change lands in history.
func (s *Service) UpdateStatus(ctx context.Context, id int64, dto UpdateStatusDTO) (*Registration, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}

	old := record.RegistrationStatus
	record.RegistrationStatus = dto.Status

	history := &registrationDatamodel.StatusHistory{
		RegistrationID: id,
		Field:          "registration_status",
		OldValue:       old,
		NewValue:       dto.Status,
		ChangedBy:      actorID(ctx),
		Remarks:        dto.Remarks,
	}

	if err := s.repo.UpdateWithHistory(record, history); err != nil {
		s.logger.Error("failed to update registration status", "error", err, "registration_id", id)
		return nil, err
	}

	s.logger.Info("registration status updated", "registration_id", id, "old", old, "new", dto.Status)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "update_status",
		Entity:   "registration",
		EntityID: id,
		OldValue: old,
		NewValue: dto.Status,
	})

	result := FromDataModel(record)
	return &result, nil
}

func (s *Service) UpdatePoliceVerification(ctx context.Context, id int64, dto UpdatePoliceVerificationDTO) (*Registration, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}

	old := record.PoliceVerificationStatus
	record.PoliceVerificationStatus = dto.Status

	history := &registrationDatamodel.StatusHistory{
		RegistrationID: id,
		Field:          "police_verification_status",
		OldValue:       old,
		NewValue:       dto.Status,
		ChangedBy:      actorID(ctx),
		Remarks:        dto.Remarks,
	}

	if err := s.repo.UpdateWithHistory(record, history); err != nil {
		s.logger.Error("failed to update police verification", "error", err, "registration_id", id)
		return nil, err
	}

	s.logger.Info("police verification updated", "registration_id", id, "old", old, "new", dto.Status)

	result := FromDataModel(record)
	return &result, nil
}

func (s *Service) UpdateSalaryStatus(ctx context.Context, id int64, dto UpdateSalaryStatusDTO) (*Registration, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}

	old := record.SalaryStatus
	record.SalaryStatus = dto.Status

	history := &registrationDatamodel.StatusHistory{
		RegistrationID: id,
		Field:          "salary_status",
		OldValue:       strconv.Itoa(old),
		NewValue:       strconv.Itoa(dto.Status),
		ChangedBy:      actorID(ctx),
		Remarks:        dto.Remarks,
	}

	if err := s.repo.UpdateWithHistory(record, history); err != nil {
		s.logger.Error("failed to update salary status", "error", err, "registration_id", id)
		return nil, err
	}

	s.logger.Info("salary status updated", "registration_id", id, "old", old, "new", dto.Status)

	result := FromDataModel(record)
	return &result, nil
}

// FinalizeRegistration completes the account info step. The account fields,
// the step flag, the status move and its history row commit together or not
// at all.
func (s *Service) FinalizeRegistration(ctx context.Context, id int64, dto FinalizeRegistrationDTO) (*Registration, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}

	old := record.RegistrationStatus

	record.AccountHolderName = &dto.AccountHolderName
	record.AccountNumber = &dto.AccountNumber
	record.BankName = &dto.BankName
	record.Step6Completed = true
	record.CurrentStep = registrationDatamodel.TotalSteps
	record.RegistrationStatus = registrationDatamodel.StatusSubmitted

	history := &registrationDatamodel.StatusHistory{
		RegistrationID: id,
		Field:          "registration_status",
		OldValue:       old,
		NewValue:       registrationDatamodel.StatusSubmitted,
		ChangedBy:      actorID(ctx),
		Remarks:        "registration finalized",
	}

	if err := s.repo.UpdateWithHistory(record, history); err != nil {
		s.logger.Error("failed to finalize registration", "error", err, "registration_id", id)
		return nil, err
	}

	s.logger.Info("registration finalized", "registration_id", id, "provider", record.ProviderName)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "finalize",
		Entity:   "registration",
		EntityID: id,
		OldValue: old,
		NewValue: registrationDatamodel.StatusSubmitted,
	})
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewRegistrationFinalizedEvent(id, registrationDatamodel.StatusSubmitted, actorID(ctx)))
	}

	result := FromDataModel(record)
	return &result, nil
}

func (s *Service) GetStatusHistory(id int64) ([]StatusChange, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRegistrationNotFound
		}
		return nil, err
	}

	rows, err := s.repo.ListHistory(id)
	if err != nil {
		s.logger.Error("failed to list status history", "error", err, "registration_id", id)
		return nil, err
	}

	result := make([]StatusChange, 0, len(rows))
	for i := range rows {
		result = append(result, historyFromDataModel(&rows[i]))
	}
	return result, nil
}

func setStepCompleted(r *registrationDatamodel.Registration, n int) {
	switch n {
	case 1:
		r.Step1Completed = true
	case 2:
		r.Step2Completed = true
	case 3:
		r.Step3Completed = true
	case 4:
		r.Step4Completed = true
	case 5:
		r.Step5Completed = true
	case 6:
		r.Step6Completed = true
	}
}

func actorID(ctx context.Context) int64 {
	if identity, ok := internal.IdentityFromContext(ctx); ok {
		return identity.UserID
	}
	return 0
}
