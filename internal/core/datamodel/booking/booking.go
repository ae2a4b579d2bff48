package booking

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

type Booking struct {
	ID            int64      `gorm:"primaryKey"`
	Reference     string     `gorm:"column:reference;uniqueIndex;not null"`
	CustomerName  string     `gorm:"column:customer_name;not null"`
	CustomerPhone string     `gorm:"column:customer_phone"`
	ProviderID    int64      `gorm:"column:provider_id;index"`
	ServiceName   string     `gorm:"column:service_name;not null"`
	ScheduledAt   time.Time  `gorm:"column:scheduled_at"`
	AmountIDR     int64      `gorm:"column:amount_idr;not null"`
	BookingStatus string     `gorm:"column:booking_status;default:pending"`
	PaymentStatus string     `gorm:"column:payment_status;default:unpaid"`
	PaymentMethod *string    `gorm:"column:payment_method"`
	PaidAt        *time.Time `gorm:"column:paid_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Booking) TableName() string {
	return "bookings"
}
