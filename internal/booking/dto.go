package booking

import (
	"time"

	errors "github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/core/common/validation"
	bookingDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/booking"
)

type CreateBookingDTO struct {
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	ProviderID    int64     `json:"provider_id"`
	ServiceName   string    `json:"service_name"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	AmountIDR     int64     `json:"amount_idr"`
}

func (d CreateBookingDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("customer_name", d.CustomerName).Required().MaxLength(150)
	v.Field("customer_phone", d.CustomerPhone).MaxLength(30)
	v.Field("provider_id", d.ProviderID).Required()
	v.Field("service_name", d.ServiceName).Required().MaxLength(150)
	v.Field("scheduled_at", d.ScheduledAt).Required()
	v.Field("amount_idr", d.AmountIDR).MinInt(1, errors.ErrCodeValidationFailed)
	return v.Validate()
}

type UpdateBookingStatusDTO struct {
	Status string `json:"status"`
}

func (d UpdateBookingStatusDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(
		bookingDatamodel.StatusPending,
		bookingDatamodel.StatusConfirmed,
		bookingDatamodel.StatusCompleted,
		bookingDatamodel.StatusCancelled,
	)
	return v.Validate()
}

type RecordPaymentDTO struct {
	PaymentMethod string `json:"payment_method"`
}

func (d RecordPaymentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("payment_method", d.PaymentMethod).Required().MaxLength(50)
	return v.Validate()
}
