package constants

// JobStatus is the canonical status for rows in import_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // accepted by the async queue
	JobStatusRunning JobStatus = "RUNNING" // extraction in progress
	JobStatusDone    JobStatus = "DONE"    // entries persisted
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// Source records which extraction stage produced a batch.
type Source string

const (
	SourceVision    Source = "vision"
	SourceHeuristic Source = "heuristic"
	SourceFallback  Source = "fallback"
)
