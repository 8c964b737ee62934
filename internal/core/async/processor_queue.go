package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/core"
)

// JobProcessor is satisfied by *core.Importer.
type JobProcessor interface {
	Prepare(ctx context.Context, req core.ImportRequest) (uuid.UUID, error)
	ProcessJob(ctx context.Context, jobID uuid.UUID, req core.ImportRequest) (core.ImportResult, error)
	Abandon(ctx context.Context, jobID uuid.UUID, cause error) error
}

// ImportQueue runs imports on a fixed pool of workers.
type ImportQueue struct {
	proc    JobProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ImportQueue)

func WithWorkers(n int) Option {
	return func(q *ImportQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ImportQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ImportQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewImportQueue(proc JobProcessor, logger *slog.Logger, opts ...Option) *ImportQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ImportQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ImportQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *ImportQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Debug("queue.worker.start", "worker_id", workerID)

	for job := range q.ch {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		ctx = common.WithRequestID(ctx, job.TraceID)
		res, err := q.proc.ProcessJob(ctx, job.JobID, job.Request)
		cancel()

		if err != nil {
			q.logger.Error("queue.job.failed", "worker_id", workerID, "job_id", job.JobID, "error", err)
			continue
		}
		q.logger.Info("queue.job.done",
			"worker_id", workerID,
			"job_id", job.JobID,
			"source", res.Source,
			"entries", len(res.Entries),
			"waited_ms", time.Since(job.SubmittedAt).Milliseconds(),
		)
	}

	q.logger.Debug("queue.worker.stop", "worker_id", workerID)
}

// Submit records a QUEUED job and hands it to the workers. A job that cannot be
// enqueued is marked FAILED.
func (q *ImportQueue) Submit(ctx context.Context, req core.ImportRequest) (uuid.UUID, error) {
	if q.isClosed() {
		return uuid.Nil, ErrQueueClosed
	}
	jobID, err := q.proc.Prepare(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}
	_, rid := common.EnsureRequestID(ctx)
	job := Job{JobID: jobID, Request: req, SubmittedAt: time.Now(), TraceID: rid}
	if err := q.Enqueue(ctx, job); err != nil {
		_ = q.proc.Abandon(ctx, jobID, err)
		return jobID, err
	}
	return jobID, nil
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *ImportQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "job_id", job.JobID)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueue.ok", "job_id", job.JobID, "timetable_id", job.Request.TimetableID)
		return nil
	default:
	}
	q.logger.Warn("queue.enqueue.backpressure", "job_id", job.JobID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ImportQueue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Shutdown stops intake and waits for queued jobs to drain or ctx to end.
func (q *ImportQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
