package llm

import (
	"encoding/json"
	"log/slog"

	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

// EntryKeys are probed in order for the entry array in a vision response.
var EntryKeys = []string{"entries", "timetable", "schedule", "classes"}

// FindEntryArray returns the first EntryKeys value that is a JSON array.
func FindEntryArray(payload map[string]any) ([]any, string, bool) {
	for _, k := range EntryKeys {
		v, present := payload[k]
		if !present {
			continue
		}
		if arr, ok := v.([]any); ok {
			return arr, k, true
		}
	}
	return nil, "", false
}

// ParseEntries decodes a vision response into entries. Invalid JSON, a non-object
// payload, or no recognized array all yield an empty result. Elements that cannot be
// sanitized into a valid entry are dropped.
func ParseEntries(raw []byte, logger *slog.Logger) []entity.ExtractedEntry {
	if logger == nil {
		logger = slog.Default()
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		logger.Warn("llm.response.decode_error", "error", err, "bytes", len(raw))
		return nil
	}
	arr, key, ok := FindEntryArray(payload)
	if !ok {
		logger.Warn("llm.response.no_entry_array", "keys", len(payload))
		return nil
	}

	out := make([]entity.ExtractedEntry, 0, len(arr))
	dropped := 0
	for i, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		clean, notes := SanitizeEntry(obj, len(out)+1)
		if err := validateEntry(clean); err != nil {
			logger.Warn("llm.response.entry_invalid", "index", i, "error", err)
			dropped++
			continue
		}
		if len(notes) > 0 {
			logger.Debug("llm.response.entry_sanitized", "index", i, "notes", notes)
		}
		out = append(out, entity.ExtractedEntry{
			Day:       clean["day"].(string),
			StartTime: clean["startTime"].(string),
			EndTime:   clean["endTime"].(string),
			Title:     clean["title"].(string),
			Location:  clean["location"].(string),
		})
	}

	logger.Info("llm.response.parsed", "key", key, "items", len(arr), "entries", len(out), "dropped", dropped)
	if len(out) == 0 {
		return nil
	}
	return out
}
