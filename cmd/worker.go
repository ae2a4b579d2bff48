package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/servicehub/admin-backend/internal/activitylog"
	activitylogPostgres "github.com/servicehub/admin-backend/internal/activitylog/postgres"
	"github.com/servicehub/admin-backend/internal/core/events"
	"github.com/servicehub/admin-backend/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools",
	Long:  `Start and manage worker pools, currently the activity log writer and the event bus.`,
}

var activityWorkerCmd = &cobra.Command{
	Use:   "activity",
	Short: "Start activity log worker pool",
	Long:  `Start the worker pool that persists audit trail entries`,
	Run: func(cmd *cobra.Command, args []string) {
		startActivityWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	activityWorkers   int
	activityQueueSize int
)

func startActivityWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize ORM: %v\n", err)
		os.Exit(1)
	}

	workerConfig := activitylog.Config{
		Workers:   getIntFlag(activityWorkers, config.ActivityLog.Workers),
		QueueSize: getIntFlag(activityQueueSize, config.ActivityLog.QueueSize),
	}

	lg.Info("starting activity log worker",
		"workers", workerConfig.Workers,
		"queue_size", workerConfig.QueueSize)

	repo := activitylogPostgres.NewActivityLogRepository(gormDB)
	recorder := activitylog.NewAsyncRecorder(repo, workerConfig, lg)

	bus := events.NewEventBus(lg)
	activitylog.SubscribeRecorder(bus, recorder)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("activity worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, shutting down activity worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		recorder.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		lg.Info("activity worker pool shutdown complete")
	case <-ctx.Done():
		lg.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)

	eventBus.Subscribe(events.EventTypeRegistrationFinalized, func(ctx context.Context, event events.Event) error {
		lg.Info("registration finalized",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	eventBus.Subscribe(events.EventTypePermissionsReplaced, func(ctx context.Context, event events.Event) error {
		lg.Info("role grants replaced",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	lg.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	lg.Info("received signal, shutting down event bus", "signal", sig)
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	activityWorkerCmd.Flags().IntVar(&activityWorkers, "workers", 0, "Number of workers (overrides config)")
	activityWorkerCmd.Flags().IntVar(&activityQueueSize, "queue-size", 0, "Job queue buffer size (overrides config)")

	workerCmd.AddCommand(activityWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)
}
