package activitylog

import (
	"context"

	"github.com/servicehub/admin-backend/internal/core/events"
)

// BusRecorder publishes audit entries on the event bus instead of writing
// them itself. A persistence subscriber installed with SubscribeRecorder
// picks them up out of band, so mutations stay decoupled from storage.
type BusRecorder struct {
	bus events.Publisher
}

func NewBusRecorder(bus events.Publisher) *BusRecorder {
	return &BusRecorder{bus: bus}
}

func (r *BusRecorder) Record(ctx context.Context, entry Entry) {
	_ = r.bus.Publish(ctx, events.NewActivityRecordedEvent(
		entry.ActorID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.OldValue,
		entry.NewValue,
		entry.Remarks,
	))
}

// SubscribeRecorder installs the persistence side of the pipeline: every
// activity.recorded event on the bus is handed to the given recorder.
func SubscribeRecorder(bus *events.EventBus, recorder Recorder) {
	bus.Subscribe(events.EventTypeActivityRecorded, func(ctx context.Context, event events.Event) error {
		recorded, ok := event.(*events.ActivityRecordedEvent)
		if !ok {
			return nil
		}
		recorder.Record(ctx, Entry{
			ActorID:  recorded.ActorID,
			Action:   recorded.Action,
			Entity:   recorded.Entity,
			EntityID: recorded.EntityID,
			OldValue: recorded.OldValue,
			NewValue: recorded.NewValue,
			Remarks:  recorded.Remarks,
		})
		return nil
	})
}
