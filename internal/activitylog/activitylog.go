package activitylog

import (
	"context"
	"time"

	activityDatamodel "github.com/servicehub/admin-backend/internal/core/datamodel/activity"
)

// Entry is one audit record describing a completed mutation, with enough
// old/new detail for operators to reconstruct what changed.
type Entry struct {
	ActorID  int64  `json:"actor_id"`
	Action   string `json:"action"`
	Entity   string `json:"entity"`
	EntityID int64  `json:"entity_id"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
	Remarks  string `json:"remarks,omitempty"`
}

// Recorder is the injected audit port. Record is fire-and-forget: it must
// never block the calling mutation or surface its own failures to it.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Repository persists audit entries.
type Repository interface {
	Create(log *activityDatamodel.Log) error
	ListByEntity(entity string, entityID int64, limit int) ([]activityDatamodel.Log, error)
}

func (e Entry) toDataModel() *activityDatamodel.Log {
	return &activityDatamodel.Log{
		ActorID:   e.ActorID,
		Action:    e.Action,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		Remarks:   e.Remarks,
		CreatedAt: time.Now(),
	}
}

// NopRecorder discards entries. Used in tests and as a safe default.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, entry Entry) {}
