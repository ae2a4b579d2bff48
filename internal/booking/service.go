package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/activitylog"
	bookingDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/booking"
)

// Repository defines the data access methods for booking records.
type Repository interface {
	GetByID(id int64) (*bookingDatamodel.Booking, error)
	GetByReference(reference string) (*bookingDatamodel.Booking, error)
	List(status string, limit, offset int) ([]bookingDatamodel.Booking, int64, error)
	Create(b *bookingDatamodel.Booking) error
	Update(b *bookingDatamodel.Booking) error
}

type Service struct {
	repo     Repository
	activity activitylog.Recorder
	logger   *slog.Logger
}

func NewService(repo Repository, activity activitylog.Recorder, logger *slog.Logger) *Service {
	if activity == nil {
		activity = activitylog.NopRecorder{}
	}
	return &Service{
		repo:     repo,
		activity: activity,
		logger:   logger,
	}
}

func (s *Service) CreateBooking(ctx context.Context, dto CreateBookingDTO) (*Booking, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record := &bookingDatamodel.Booking{
		Reference:     uuid.NewString(),
		CustomerName:  dto.CustomerName,
		CustomerPhone: dto.CustomerPhone,
		ProviderID:    dto.ProviderID,
		ServiceName:   dto.ServiceName,
		ScheduledAt:   dto.ScheduledAt,
		AmountIDR:     dto.AmountIDR,
		BookingStatus: bookingDatamodel.StatusPending,
		PaymentStatus: bookingDatamodel.PaymentStatusUnpaid,
	}

	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create booking", "error", err, "customer", dto.CustomerName)
		return nil, err
	}

	s.logger.Info("booking created", "booking_id", record.ID, "reference", record.Reference)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "create",
		Entity:   "booking",
		EntityID: record.ID,
		NewValue: record.Reference,
	})

	result := FromDataModel(record)
	return &result, nil
}

func (s *Service) GetBooking(id int64) (*Booking, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBookingNotFound
		}
		return nil, err
	}
	result := FromDataModel(record)
	return &result, nil
}

func (s *Service) GetBookingByReference(reference string) (*Booking, error) {
	record, err := s.repo.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBookingNotFound
		}
		return nil, err
	}
	result := FromDataModel(record)
	return &result, nil
}

func (s *Service) ListBookings(status string, limit, offset int) ([]Booking, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.repo.List(status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list bookings", "error", err)
		return nil, 0, err
	}

	result := make([]Booking, 0, len(records))
	for i := range records {
		result = append(result, FromDataModel(&records[i]))
	}
	return result, total, nil
}

func (s *Service) UpdateBookingStatus(ctx context.Context, id int64, dto UpdateBookingStatusDTO) (*Booking, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBookingNotFound
		}
		return nil, err
	}

	old := record.BookingStatus
	record.BookingStatus = dto.Status

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to update booking status", "error", err, "booking_id", id)
		return nil, err
	}

	s.logger.Info("booking status updated", "booking_id", id, "old", old, "new", dto.Status)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "update_status",
		Entity:   "booking",
		EntityID: id,
		OldValue: old,
		NewValue: dto.Status,
	})

	result := FromDataModel(record)
	return &result, nil
}

// RecordPayment marks the booking paid. Gateway settlement happens outside
// this system; only the resulting state is recorded here.
func (s *Service) RecordPayment(ctx context.Context, id int64, dto RecordPaymentDTO) (*Booking, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBookingNotFound
		}
		return nil, err
	}

	if record.PaymentStatus == bookingDatamodel.PaymentStatusPaid {
		return nil, internal.NewConflictError("booking is already paid", internal.ErrCodeDuplicateBooking)
	}

	now := time.Now()
	old := record.PaymentStatus
	record.PaymentStatus = bookingDatamodel.PaymentStatusPaid
	record.PaymentMethod = &dto.PaymentMethod
	record.PaidAt = &now

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to record payment", "error", err, "booking_id", id)
		return nil, err
	}

	s.logger.Info("payment recorded", "booking_id", id, "method", dto.PaymentMethod)

	s.activity.Record(ctx, activitylog.Entry{
		ActorID:  actorID(ctx),
		Action:   "record_payment",
		Entity:   "booking",
		EntityID: id,
		OldValue: old,
		NewValue: bookingDatamodel.PaymentStatusPaid,
	})

	result := FromDataModel(record)
	return &result, nil
}

func actorID(ctx context.Context) int64 {
	if identity, ok := internal.IdentityFromContext(ctx); ok {
		return identity.UserID
	}
	return 0
}
