package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTimeRange(t *testing.T) {
	tests := []struct {
		line      string
		wantOK    bool
		start     string
		end       string
		startMer  string
		endMer    string
		wantMatch string
	}{
		{line: "Monday 09:00-10:30 Room 101 Calculus", wantOK: true, start: "09:00", end: "10:30", wantMatch: "09:00-10:30"},
		{line: "9:00 - 10:00 Physics", wantOK: true, start: "9:00", end: "10:00", wantMatch: "9:00 - 10:00"},
		{line: "Chem 1:15 to 2:45", wantOK: true, start: "1:15", end: "2:45", wantMatch: "1:15 to 2:45"},
		{line: "Art 2:00 PM – 3:00 pm", wantOK: true, start: "2:00", end: "3:00", startMer: "PM", endMer: "PM", wantMatch: "2:00 PM – 3:00 pm"},
		{line: "Bio 08:00—09:00", wantOK: true, start: "08:00", end: "09:00", wantMatch: "08:00—09:00"},
		{line: "Lang 9:00-10:00 Amharic", wantOK: true, start: "9:00", end: "10:00", wantMatch: "9:00-10:00"},
		{line: "Chem 9:00 to10:00", wantOK: true, start: "9:00", end: "10:00", wantMatch: "9:00 to10:00"},
		{line: "Room 101", wantOK: false},
		{line: "Lunch at 12:00", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := FindTimeRange(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.start, got.Start)
			assert.Equal(t, tt.end, got.End)
			assert.Equal(t, tt.startMer, got.StartMeridiem)
			assert.Equal(t, tt.endMer, got.EndMeridiem)
			assert.Equal(t, tt.wantMatch, got.Match)
		})
	}
}

func TestTo24Hour(t *testing.T) {
	assert.Equal(t, "14:00", To24Hour("2:00", "PM"))
	assert.Equal(t, "12:30", To24Hour("12:30", "pm"))
	assert.Equal(t, "00:15", To24Hour("12:15", "AM"))
	assert.Equal(t, "09:05", To24Hour("9:05", "am"))
	assert.Equal(t, "9:05", To24Hour("9:05", ""))
	assert.Equal(t, "13:00", To24Hour("13:00", "PM"))

	start, end := TimeRange{Start: "11:00", StartMeridiem: "AM", End: "1:00", EndMeridiem: "PM"}.Normalized()
	assert.Equal(t, "11:00", start)
	assert.Equal(t, "13:00", end)
}

func TestFindDayCaseInsensitive(t *testing.T) {
	for _, line := range []string{"MONDAY 9:00-10:00", "monday 9:00-10:00", "Monday 9:00-10:00"} {
		m, ok := FindDay(line)
		require.True(t, ok, line)
		assert.Equal(t, "Monday", m.Value)
	}

	m, ok := FindDay("Lab on wEdNeSdAy afternoon")
	require.True(t, ok)
	assert.Equal(t, "Wednesday", m.Value)
	assert.Equal(t, "wEdNeSdAy", m.Raw)

	_, ok = FindDay("Mondays are hard")
	assert.False(t, ok)
	_, ok = FindDay("9:00-10:00 Calculus")
	assert.False(t, ok)
}

func TestFindLocation(t *testing.T) {
	tests := map[string]string{
		"Calculus Room 101":   "Room 101",
		"physics lab-3":       "lab-3",
		"Hall B2 History":     "Hall B2",
		"Lecture 4 Economics": "Lecture 4",
		"ROOM A 12":           "ROOM A 12",
	}
	for line, want := range tests {
		m, ok := FindLocation(line)
		require.True(t, ok, line)
		assert.Equal(t, want, m.Value, line)
	}

	_, ok := FindLocation("Marshall 2")
	assert.False(t, ok)
	_, ok = FindLocation("Roommate meeting")
	assert.False(t, ok)
}

func TestMatchSpans(t *testing.T) {
	line := "Sundays Club Sunday 9:00-10:00 Room 4"

	tr, ok := FindTimeRange(line)
	require.True(t, ok)
	assert.Equal(t, tr.Match, line[tr.Span.Start:tr.Span.End])

	d, ok := FindDay(line)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 13, End: 19}, d.Span)

	l, ok := FindLocation(line)
	require.True(t, ok)
	assert.Equal(t, "Room 4", line[l.Span.Start:l.Span.End])
}

func TestFindLocationOutside(t *testing.T) {
	line := "Lab 9:00-10:00 Chemistry"
	tr, ok := FindTimeRange(line)
	require.True(t, ok)

	m, ok := FindLocation(line)
	require.True(t, ok)
	assert.Equal(t, "Lab 9", m.Value)

	_, ok = FindLocationOutside(line, tr.Span)
	assert.False(t, ok)

	line = "Lab 9:00-10:00 Chemistry Lab 3"
	tr, _ = FindTimeRange(line)
	m, ok = FindLocationOutside(line, tr.Span)
	require.True(t, ok)
	assert.Equal(t, "Lab 3", m.Value)
}
