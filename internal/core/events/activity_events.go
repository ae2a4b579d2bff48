package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeActivityRecorded      = "activity.recorded"
	EventTypeRegistrationFinalized = "registration.finalized"
	EventTypePermissionsReplaced   = "permissions.replaced"
)

// ActivityRecordedEvent carries one audit entry emitted after a successful
// mutation. Handlers persist it out of band; a failure never propagates back
// to the mutation that produced it.
type ActivityRecordedEvent struct {
	BaseEvent
	ActorID  int64  `json:"actor_id"`
	Action   string `json:"action"`
	Entity   string `json:"entity"`
	EntityID int64  `json:"entity_id"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
	Remarks  string `json:"remarks,omitempty"`
}

func NewActivityRecordedEvent(actorID int64, action, entity string, entityID int64, oldValue, newValue, remarks string) *ActivityRecordedEvent {
	return &ActivityRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeActivityRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"actor_id":  actorID,
				"action":    action,
				"entity":    entity,
				"entity_id": entityID,
				"old_value": oldValue,
				"new_value": newValue,
				"remarks":   remarks,
			},
		},
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		OldValue: oldValue,
		NewValue: newValue,
		Remarks:  remarks,
	}
}

type RegistrationFinalizedEvent struct {
	BaseEvent
	RegistrationID int64  `json:"registration_id"`
	Status         string `json:"status"`
	ChangedBy      int64  `json:"changed_by"`
}

func NewRegistrationFinalizedEvent(registrationID int64, status string, changedBy int64) *RegistrationFinalizedEvent {
	return &RegistrationFinalizedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRegistrationFinalized,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"registration_id": registrationID,
				"status":          status,
				"changed_by":      changedBy,
			},
		},
		RegistrationID: registrationID,
		Status:         status,
		ChangedBy:      changedBy,
	}
}

type PermissionsReplacedEvent struct {
	BaseEvent
	RoleID     int64 `json:"role_id"`
	GrantCount int   `json:"grant_count"`
	ChangedBy  int64 `json:"changed_by"`
}

func NewPermissionsReplacedEvent(roleID int64, grantCount int, changedBy int64) *PermissionsReplacedEvent {
	return &PermissionsReplacedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePermissionsReplaced,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"role_id":     roleID,
				"grant_count": grantCount,
				"changed_by":  changedBy,
			},
		},
		RoleID:     roleID,
		GrantCount: grantCount,
		ChangedBy:  changedBy,
	}
}
