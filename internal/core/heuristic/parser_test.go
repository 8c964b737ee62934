package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

func TestParseConcreteLine(t *testing.T) {
	p := NewParser(nil)
	got := p.ParseText("Monday 09:00-10:30 Room 101 Calculus")
	require.Len(t, got, 1)
	assert.Equal(t, entity.ExtractedEntry{
		Day:       "Monday",
		StartTime: "09:00",
		EndTime:   "10:30",
		Title:     "Calculus",
		Location:  "Room 101",
	}, got[0])
}

func TestParseSkipsLinesWithoutTime(t *testing.T) {
	p := NewParser(nil)
	assert.Empty(t, p.Parse([]string{"Room 101", "Calculus with Dr. Smith"}))
	assert.Empty(t, p.Parse(nil))
}

func TestParseSynthesizesTitlesInOrder(t *testing.T) {
	p := NewParser(nil)
	got := p.Parse([]string{
		"Tuesday 9:00-10:00 Room 12",
		"Tuesday 9:00-10:00 Room 12",
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Class 1", got[0].Title)
	assert.Equal(t, "Class 2", got[1].Title)
	assert.Equal(t, "Tuesday", got[0].Day)
	assert.Equal(t, "Room 12", got[1].Location)
}

func TestParseSynthesizedTitleCountsProducedEntries(t *testing.T) {
	p := NewParser(nil)
	got := p.Parse([]string{
		"Wednesday 8:00-9:00 Biology",
		"no time here at all",
		"Wednesday 9:00-10:00 Lab 4",
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Biology", got[0].Title)
	assert.Equal(t, "Class 2", got[1].Title)
}

func TestParseDefaultsAndCasing(t *testing.T) {
	p := NewParser(nil)
	for _, line := range []string{"MONDAY 9:00-10:00 Art", "monday 9:00-10:00 Art", "Monday 9:00-10:00 Art"} {
		got := p.Parse([]string{line})
		require.Len(t, got, 1)
		assert.Equal(t, "Monday", got[0].Day)
		assert.Equal(t, "Art", got[0].Title)
	}

	got := p.Parse([]string{"10:00 - 11:30 | Chemistry |"})
	require.Len(t, got, 1)
	assert.Equal(t, "Monday", got[0].Day)
	assert.Equal(t, "", got[0].Location)
	assert.Equal(t, "Chemistry", got[0].Title)
}

func TestParseConvertsMeridiem(t *testing.T) {
	p := NewParser(nil)
	got := p.Parse([]string{"Friday 2:00 PM - 3:30 PM Hall B2 Economics"})
	require.Len(t, got, 1)
	assert.Equal(t, "14:00", got[0].StartTime)
	assert.Equal(t, "15:30", got[0].EndTime)
	assert.Equal(t, "Hall B2", got[0].Location)
	assert.Equal(t, "Economics", got[0].Title)
}

func TestParseKeepsEndBeforeStart(t *testing.T) {
	p := NewParser(nil)
	got := p.Parse([]string{"Thursday 11:00-9:00 Drama"})
	require.Len(t, got, 1)
	assert.Equal(t, "11:00", got[0].StartTime)
	assert.Equal(t, "9:00", got[0].EndTime)
}

func TestParseCutsMatchedDayNotEarlierText(t *testing.T) {
	p := NewParser(nil)
	got := p.Parse([]string{"Sundays Club Sunday 9:00-10:00"})
	require.Len(t, got, 1)
	assert.Equal(t, "Sunday", got[0].Day)
	assert.Equal(t, "Sundays Club", got[0].Title)
}

func TestParseLocationDoesNotEatTime(t *testing.T) {
	p := NewParser(nil)
	got := p.Parse([]string{"Lab 9:00-10:00 Chemistry"})
	require.Len(t, got, 1)
	assert.Equal(t, "9:00", got[0].StartTime)
	assert.Equal(t, "", got[0].Location)
	assert.Equal(t, "Lab Chemistry", got[0].Title)

	got = p.Parse([]string{"Tuesday Room 4 10:00 to11:00 Room Music"})
	require.Len(t, got, 1)
	assert.Equal(t, "Room 4", got[0].Location)
	assert.Equal(t, "11:00", got[0].EndTime)
	assert.Equal(t, "Room Music", got[0].Title)
}
