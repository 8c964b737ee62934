package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/timetable-import/constants"
)

// BuildSystemPrompt describes the exact output contract expected from the service.
func BuildSystemPrompt(req VisionRequest) string {
	var b strings.Builder
	b.WriteString("You extract class timetables from images. ")
	b.WriteString("Return ONLY a JSON object of the form {\"entries\": [...]}. ")
	b.WriteString("Each entry is an object with exactly these string fields: ")
	b.WriteString("\"day\", \"startTime\", \"endTime\", \"title\", \"location\". ")
	b.WriteString("\"day\" MUST be one of: " + strings.Join(constants.WeekdayNames(), ", ") + ". ")
	b.WriteString("\"startTime\" and \"endTime\" MUST use 24-hour HH:MM (convert AM/PM, e.g. 2:00 PM -> 14:00). ")
	b.WriteString("\"title\" is the course or event name. \"location\" is the room or venue, or \"\" if not shown. ")
	b.WriteString("Emit one entry per class per day; if a class repeats on several days, repeat the entry. ")
	b.WriteString("Do not invent classes that are not visible. If nothing is legible return {\"entries\": []}.")
	if req.Enhance {
		b.WriteString(" Read every cell of grid layouts carefully, including merged cells and small print, ")
		b.WriteString("and resolve day columns from the header row.")
	}
	return b.String()
}

// BuildUserPrompt is sent alongside the image.
func BuildUserPrompt() string {
	return "Extract every scheduled class from this timetable image.\n\nJSON Schema:\n" + mustJSON(BuildEntriesJSONSchema())
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
