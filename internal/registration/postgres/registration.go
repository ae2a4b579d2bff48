package postgres

import (
	registrationDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/registration"
	"github.com/servicehub/admin-backend/internal/registration"
	"gorm.io/gorm"
)

// RegistrationRepository implements the registration.Repository interface using GORM.
type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) registration.Repository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) GetByID(id int64) (*registrationDatamodel.Registration, error) {
	var rec registrationDatamodel.Registration
	err := r.db.Where("id = ?", id).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RegistrationRepository) List(status string, limit, offset int) ([]registrationDatamodel.Registration, int64, error) {
	query := r.db.Model(&registrationDatamodel.Registration{})
	if status != "" {
		query = query.Where("registration_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []registrationDatamodel.Registration
	err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}

func (r *RegistrationRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&registrationDatamodel.Registration{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *RegistrationRepository) Create(rec *registrationDatamodel.Registration) error {
	return r.db.Create(rec).Error
}

func (r *RegistrationRepository) Update(rec *registrationDatamodel.Registration) error {
	return r.db.Save(rec).Error
}

// UpdateWithHistory saves the record and appends a history row in one
// transaction. A failure on either write rolls back both.
func (r *RegistrationRepository) UpdateWithHistory(rec *registrationDatamodel.Registration, h *registrationDatamodel.StatusHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		return tx.Create(h).Error
	})
}

func (r *RegistrationRepository) ListHistory(registrationID int64) ([]registrationDatamodel.StatusHistory, error) {
	var rows []registrationDatamodel.StatusHistory
	err := r.db.Where("registration_id = ?", registrationID).Order("id ASC").Find(&rows).Error
	return rows, err
}
