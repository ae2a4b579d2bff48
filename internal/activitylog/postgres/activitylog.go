package postgres

import (
	"github.com/servicehub/admin-backend/internal/activitylog"
	activityDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/activity"
	"gorm.io/gorm"
)

type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) activitylog.Repository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(log *activityDatamodel.Log) error {
	return r.db.Create(log).Error
}

func (r *ActivityLogRepository) ListByEntity(entity string, entityID int64, limit int) ([]activityDatamodel.Log, error) {
	var logs []activityDatamodel.Log
	err := r.db.Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
