package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedEntry is one class or event recovered from a timetable image.
type ExtractedEntry struct {
	Day       string `json:"day" validate:"required,weekday"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
	Title     string `json:"title" validate:"required"`
	Location  string `json:"location"`
}

// ScheduleEntry is a persisted ExtractedEntry attached to a timetable.
type ScheduleEntry struct {
	ID          uuid.UUID  `json:"id"`
	TimetableID uuid.UUID  `json:"timetableId"`
	JobID       *uuid.UUID `json:"jobId,omitempty"`
	Position    int        `json:"position"`
	ExtractedEntry
	CreatedAt time.Time `json:"createdAt"`
}
