package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/servicehub/admin-backend/internal/core/events"
	"github.com/servicehub/admin-backend/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
	Long:  `Inspect the in-process event bus and publish debug events`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a debug event",
	Long: `Publish a debug event to the in-process bus and watch a logging
subscriber receive it. Known types: ` + events.EventTypeActivityRecorded + `, ` +
		events.EventTypeRegistrationFinalized + `, ` + events.EventTypePermissionsReplaced,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishDebugEvent(args[0])
	},
}

var (
	eventData string
	eventSync bool
)

func publishDebugEvent(eventType string) {
	lg := logger.LoggerWrapper()

	bus := events.NewEventBus(lg)
	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("debug subscriber received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	debugEvent := events.BaseEvent{
		ID:        fmt.Sprintf("debug-%d", time.Now().Unix()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	lg.Info("publishing debug event", "event_type", eventType, "event_id", debugEvent.ID)

	ctx := context.Background()
	if eventSync {
		if err := bus.PublishSync(ctx, debugEvent); err != nil {
			lg.Error("failed to publish event", "error", err)
			return
		}
	} else {
		if err := bus.Publish(ctx, debugEvent); err != nil {
			lg.Error("failed to publish event", "error", err)
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	lg.Info("debug event published")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "debug message", "Event data message")
	publishEventCmd.Flags().BoolVar(&eventSync, "sync", false, "Deliver synchronously instead of fan-out")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
