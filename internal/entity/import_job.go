package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/constants"
)

// ImportJob records one run of the extraction pipeline against a timetable.
type ImportJob struct {
	ID           uuid.UUID           `json:"id"`
	TimetableID  uuid.UUID           `json:"timetableId"`
	Status       constants.JobStatus `json:"status"`
	Source       constants.Source    `json:"source,omitempty"`
	EntryCount   int                 `json:"entryCount"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	StartedAt    time.Time           `json:"startedAt"`
	FinishedAt   *time.Time          `json:"finishedAt,omitempty"`
}
