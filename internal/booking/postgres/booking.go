package postgres

import (
	"github.com/servicehub/admin-backend/internal/booking"
	bookingDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/booking"
	"gorm.io/gorm"
)

// BookingRepository implements the booking.Repository interface using GORM.
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) booking.Repository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetByID(id int64) (*bookingDatamodel.Booking, error) {
	var b bookingDatamodel.Booking
	err := r.db.Where("id = ?", id).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByReference(reference string) (*bookingDatamodel.Booking, error) {
	var b bookingDatamodel.Booking
	err := r.db.Where("reference = ?", reference).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) List(status string, limit, offset int) ([]bookingDatamodel.Booking, int64, error) {
	query := r.db.Model(&bookingDatamodel.Booking{})
	if status != "" {
		query = query.Where("booking_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []bookingDatamodel.Booking
	err := query.Order("scheduled_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}

func (r *BookingRepository) Create(b *bookingDatamodel.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) Update(b *bookingDatamodel.Booking) error {
	return r.db.Save(b).Error
}
