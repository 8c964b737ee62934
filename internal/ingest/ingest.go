// Package ingest feeds timetable images from the filesystem into the import queue.
package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/internal/core"
)

// Submitter is satisfied by *async.ImportQueue.
type Submitter interface {
	Submit(ctx context.Context, req core.ImportRequest) (uuid.UUID, error)
}

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path         string
	JobID        uuid.UUID
	HashHex      string
	Deduplicated bool
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}
