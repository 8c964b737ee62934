package llm

import (
	"github.com/joseph-ayodele/timetable-import/constants"
)

// TimePattern is the accepted shape of entry times.
const TimePattern = `^[0-2]?[0-9]:[0-5][0-9]$`

// BuildEntryJSONSchema returns the JSON-Schema for a single entry as a generic map.
func BuildEntryJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"day":       map[string]any{"type": "string", "enum": constants.WeekdayNames()},
			"startTime": map[string]any{"type": "string", "pattern": TimePattern},
			"endTime":   map[string]any{"type": "string", "pattern": TimePattern},
			"title":     map[string]any{"type": "string", "minLength": 1},
			"location":  map[string]any{"type": "string"},
		},
		"required": []string{"day", "startTime", "endTime", "title", "location"},
	}
}

// BuildEntriesJSONSchema wraps the entry schema in the response envelope we ask for.
func BuildEntriesJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entries": map[string]any{
				"type":  "array",
				"items": BuildEntryJSONSchema(),
			},
		},
		"required": []string{"entries"},
	}
}
