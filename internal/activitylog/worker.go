package activitylog

import (
	"context"
	"log/slog"
	"sync"
)

type logJob struct {
	entry Entry
}

type worker struct {
	id         int
	workerPool chan chan logJob
	jobChannel chan logJob
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan logJob, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan logJob),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, processFunc func(logJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker writing audit entry", "worker_id", w.id, "action", job.entry.Action)
				processFunc(job)
			case <-ctx.Done():
				w.logger.Debug("audit worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

type Config struct {
	Workers   int
	QueueSize int
}

// AsyncRecorder persists audit entries through a bounded worker pool so that
// slow storage never backs up into the mutation path. A full queue drops the
// entry with a warning; audit writes are best effort by contract.
type AsyncRecorder struct {
	repo    Repository
	logger  *slog.Logger
	workers int

	jobQueue   chan logJob
	workerPool chan chan logJob
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewAsyncRecorder(repo Repository, config Config, logger *slog.Logger) *AsyncRecorder {
	ctx, cancel := context.WithCancel(context.Background())

	workers := config.Workers
	if workers <= 0 {
		workers = 4
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	r := &AsyncRecorder{
		repo:       repo,
		logger:     logger,
		workers:    workers,
		jobQueue:   make(chan logJob, queueSize),
		workerPool: make(chan chan logJob, workers),
		ctx:        ctx,
		cancel:     cancel,
	}

	r.startWorkerPool()

	return r
}

func (r *AsyncRecorder) startWorkerPool() {
	r.once.Do(func() {
		for i := 0; i < r.workers; i++ {
			w := newWorker(i, r.workerPool, r.logger)
			w.start(r.ctx, &r.wg, r.writeEntry)
		}

		go r.dispatch()

		r.logger.Info("activity log worker pool started",
			"workers", r.workers,
			"queue_size", cap(r.jobQueue))
	})
}

func (r *AsyncRecorder) dispatch() {
	r.wg.Add(1)
	defer r.wg.Done()

	for {
		select {
		case job := <-r.jobQueue:
			select {
			case jobChannel := <-r.workerPool:
				select {
				case jobChannel <- job:
				case <-r.ctx.Done():
					r.logger.Info("audit dispatcher shutting down")
					return
				}
			case <-r.ctx.Done():
				r.logger.Info("audit dispatcher shutting down")
				return
			}
		case <-r.ctx.Done():
			r.logger.Info("audit dispatcher shutting down")
			return
		}
	}
}

// Record queues the entry for persistence. Never blocks and never returns an
// error to the caller.
func (r *AsyncRecorder) Record(ctx context.Context, entry Entry) {
	select {
	case r.jobQueue <- logJob{entry: entry}:
	default:
		r.logger.Warn("activity log queue full, dropping entry",
			"action", entry.Action,
			"entity", entry.Entity,
			"entity_id", entry.EntityID)
	}
}

func (r *AsyncRecorder) writeEntry(job logJob) {
	if err := r.repo.Create(job.entry.toDataModel()); err != nil {
		r.logger.Error("failed to persist activity log entry",
			"error", err,
			"action", job.entry.Action,
			"entity", job.entry.Entity,
			"entity_id", job.entry.EntityID)
	}
}

func (r *AsyncRecorder) Shutdown() {
	r.logger.Info("shutting down activity log recorder")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("activity log recorder shutdown complete")
}
