package activity

import "time"

// Log is one audit entry written by the activity-log worker. Persisted out of
// band from the mutation that produced it.
type Log struct {
	ID        int64     `gorm:"primaryKey"`
	ActorID   int64     `gorm:"column:actor_id;index"`
	Action    string    `gorm:"column:action;not null"`
	Entity    string    `gorm:"column:entity;not null"`
	EntityID  int64     `gorm:"column:entity_id"`
	OldValue  string    `gorm:"column:old_value"`
	NewValue  string    `gorm:"column:new_value"`
	Remarks   string    `gorm:"column:remarks"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Log) TableName() string {
	return "activity_logs"
}
