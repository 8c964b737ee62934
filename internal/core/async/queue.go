package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/internal/core"
)

var ErrQueueClosed = errors.New("import queue is shut down")

// Job is one queued import: a job row already recorded as QUEUED plus its request.
type Job struct {
	JobID       uuid.UUID
	Request     core.ImportRequest
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Submit(ctx context.Context, req core.ImportRequest) (uuid.UUID, error)
	Shutdown(ctx context.Context)
}
