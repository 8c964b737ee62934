package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

const oneEntry = `[{"day":"Monday","startTime":"09:00","endTime":"10:30","title":"Mathematics","location":"Room 101"}]`

func TestParseEntriesKeyTolerance(t *testing.T) {
	want := entity.ExtractedEntry{Day: "Monday", StartTime: "09:00", EndTime: "10:30", Title: "Mathematics", Location: "Room 101"}
	for _, key := range []string{"entries", "timetable", "schedule", "classes"} {
		t.Run(key, func(t *testing.T) {
			got := ParseEntries([]byte(`{"`+key+`":`+oneEntry+`}`), nil)
			require.Len(t, got, 1)
			assert.Equal(t, want, got[0])
		})
	}
}

func TestParseEntriesKeyPriority(t *testing.T) {
	raw := `{"classes":[{"day":"Friday","startTime":"8:00","endTime":"9:00","title":"Later","location":""}],` +
		`"schedule":[{"day":"Tuesday","startTime":"8:00","endTime":"9:00","title":"Earlier","location":""}]}`
	got := ParseEntries([]byte(raw), nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Earlier", got[0].Title)

	// a present but non-array key is skipped
	raw = `{"entries":"none","classes":` + oneEntry + `}`
	got = ParseEntries([]byte(raw), nil)
	require.Len(t, got, 1)
}

func TestParseEntriesEmptyResults(t *testing.T) {
	for name, raw := range map[string]string{
		"invalid json": `{"entries": [`,
		"not object":   `[1,2,3]`,
		"no known key": `{"rows":` + oneEntry + `}`,
		"empty array":  `{"entries":[]}`,
		"all invalid":  `{"entries":[{"day":"Monday","startTime":"soon","endTime":"later","title":"X"}, 42]}`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, ParseEntries([]byte(raw), nil))
		})
	}
}

func TestParseEntriesSanitizes(t *testing.T) {
	raw := `{"entries":[
		{"weekday":"WED","start":"1:15 pm","end":"14:45:00","course":"","venue":null,"teacher":"Dr. Who"},
		{"day":"sometime","startTime":"07.30","endTime":"08:15","title":"Chemistry","subject":"ignored","location":"Hall 3"}
	]}`
	got := ParseEntries([]byte(raw), nil)
	require.Len(t, got, 2)

	assert.Equal(t, entity.ExtractedEntry{Day: "Wednesday", StartTime: "13:15", EndTime: "14:45", Title: "Class 1", Location: ""}, got[0])
	assert.Equal(t, entity.ExtractedEntry{Day: "Monday", StartTime: "07:30", EndTime: "08:15", Title: "Chemistry", Location: "Hall 3"}, got[1])
}

func TestSanitizeEntryNotes(t *testing.T) {
	out, notes := SanitizeEntry(map[string]any{"title": "Art", "start_time": 9.5, "extra": true}, 3)
	assert.Equal(t, "Art", out["title"])
	assert.Equal(t, "Monday", out["day"])
	assert.Contains(t, notes, "extra(unknown)")
	assert.Contains(t, notes, "start_time->startTime")
}

func TestBuildUserPromptEmbedsSchema(t *testing.T) {
	p := BuildUserPrompt()
	assert.Contains(t, p, `"startTime"`)
	assert.Contains(t, p, TimePattern[1:4])
	assert.Contains(t, BuildSystemPrompt(VisionRequest{Enhance: true}), "merged cells")
	assert.NotContains(t, BuildSystemPrompt(VisionRequest{}), "merged cells")
}

func TestValidateEntry(t *testing.T) {
	require.NoError(t, validateEntry(map[string]any{"day": "Monday", "startTime": "09:00", "endTime": "10:00", "title": "Maths", "location": ""}))
	require.Error(t, validateEntry(map[string]any{"day": "Funday"}))
}
