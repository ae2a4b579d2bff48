package booking

import (
	"time"

	bookingDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/booking"
)

// Booking is the admin-facing view of a service booking record.
type Booking struct {
	ID            int64      `json:"id"`
	Reference     string     `json:"reference"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
	ProviderID    int64      `json:"provider_id"`
	ServiceName   string     `json:"service_name"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	AmountIDR     int64      `json:"amount_idr"`
	BookingStatus string     `json:"booking_status"`
	PaymentStatus string     `json:"payment_status"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func FromDataModel(b *bookingDatamodel.Booking) Booking {
	return Booking{
		ID:            b.ID,
		Reference:     b.Reference,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		ProviderID:    b.ProviderID,
		ServiceName:   b.ServiceName,
		ScheduledAt:   b.ScheduledAt,
		AmountIDR:     b.AmountIDR,
		BookingStatus: b.BookingStatus,
		PaymentStatus: b.PaymentStatus,
		PaymentMethod: b.PaymentMethod,
		PaidAt:        b.PaidAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
