package pipeline

import "github.com/joseph-ayodele/timetable-import/internal/entity"

var fallbackEntries = [...]entity.ExtractedEntry{
	{Day: "Monday", StartTime: "09:00", EndTime: "10:30", Title: "Mathematics", Location: "Room 101"},
	{Day: "Monday", StartTime: "11:00", EndTime: "12:30", Title: "Physics", Location: "Room 102"},
	{Day: "Tuesday", StartTime: "09:00", EndTime: "10:30", Title: "Chemistry", Location: "Lab 1"},
	{Day: "Wednesday", StartTime: "10:00", EndTime: "11:30", Title: "English Literature", Location: "Room 201"},
	{Day: "Thursday", StartTime: "13:00", EndTime: "14:30", Title: "Computer Science", Location: "Lab 2"},
	{Day: "Friday", StartTime: "09:00", EndTime: "10:30", Title: "History", Location: "Room 105"},
}

// FallbackEntries returns a fresh copy of the fixed placeholder timetable.
func FallbackEntries() []entity.ExtractedEntry {
	out := make([]entity.ExtractedEntry, len(fallbackEntries))
	copy(out, fallbackEntries[:])
	return out
}
