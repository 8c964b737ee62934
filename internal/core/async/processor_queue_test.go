package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/core"
)

type recordingProcessor struct {
	mu        sync.Mutex
	prepared  []uuid.UUID
	processed []uuid.UUID
	abandoned []uuid.UUID
	block     chan struct{}
}

func (r *recordingProcessor) Abandon(_ context.Context, jobID uuid.UUID, _ error) error {
	r.mu.Lock()
	r.abandoned = append(r.abandoned, jobID)
	r.mu.Unlock()
	return nil
}

func (r *recordingProcessor) Prepare(_ context.Context, req core.ImportRequest) (uuid.UUID, error) {
	if req.TimetableID == uuid.Nil {
		return uuid.Nil, errors.New("timetable_id is required")
	}
	id := uuid.New()
	r.mu.Lock()
	r.prepared = append(r.prepared, id)
	r.mu.Unlock()
	return id, nil
}

func (r *recordingProcessor) ProcessJob(ctx context.Context, jobID uuid.UUID, req core.ImportRequest) (core.ImportResult, error) {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return core.ImportResult{}, ctx.Err()
		}
	}
	r.mu.Lock()
	r.processed = append(r.processed, jobID)
	r.mu.Unlock()
	return core.ImportResult{JobID: jobID, TimetableID: req.TimetableID, Source: constants.SourceVision}, nil
}

func (r *recordingProcessor) processedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.processed)
}

func TestImportQueue_ProcessesSubmittedJobs(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewImportQueue(proc, nil, WithWorkers(3), WithQueueSize(8))

	for i := 0; i < 5; i++ {
		id, err := q.Submit(context.Background(), core.ImportRequest{TimetableID: uuid.New()})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, 5, proc.processedCount())
	assert.ElementsMatch(t, proc.prepared, proc.processed)
}

func TestImportQueue_RejectsAfterShutdown(t *testing.T) {
	q := NewImportQueue(&recordingProcessor{}, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	_, err := q.Submit(context.Background(), core.ImportRequest{TimetableID: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueClosed)

	err = q.Enqueue(context.Background(), Job{JobID: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestImportQueue_PrepareErrorIsReturned(t *testing.T) {
	q := NewImportQueue(&recordingProcessor{}, nil)
	defer q.Shutdown(context.Background())

	_, err := q.Submit(context.Background(), core.ImportRequest{})
	assert.Error(t, err)
}

func TestImportQueue_BackpressureHonoursContext(t *testing.T) {
	proc := &recordingProcessor{block: make(chan struct{})}
	q := NewImportQueue(proc, nil, WithWorkers(1), WithQueueSize(1), WithProcessTimeout(5*time.Second))

	// One job occupies the worker, one fills the buffer.
	require.NoError(t, q.Enqueue(context.Background(), Job{JobID: uuid.New()}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{JobID: uuid.New()}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{JobID: uuid.New()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(proc.block)
	q.Shutdown(context.Background())
	assert.Equal(t, 2, proc.processedCount())
}

func TestImportQueue_SubmitAbandonsJobThatCannotBeQueued(t *testing.T) {
	proc := &recordingProcessor{block: make(chan struct{})}
	q := NewImportQueue(proc, nil, WithWorkers(1), WithQueueSize(1), WithProcessTimeout(5*time.Second))

	_, err := q.Submit(context.Background(), core.ImportRequest{TimetableID: uuid.New()})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	_, err = q.Submit(context.Background(), core.ImportRequest{TimetableID: uuid.New()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	id, err := q.Submit(ctx, core.ImportRequest{TimetableID: uuid.New()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	proc.mu.Lock()
	assert.Equal(t, []uuid.UUID{id}, proc.abandoned)
	proc.mu.Unlock()

	close(proc.block)
	q.Shutdown(context.Background())
	assert.Equal(t, 2, proc.processedCount())
}
