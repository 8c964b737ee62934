package pipeline

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
	"github.com/joseph-ayodele/timetable-import/internal/core/ocr"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
	"github.com/joseph-ayodele/timetable-import/internal/llm"
)

type stubVision struct {
	entries []entity.ExtractedEntry
	err     error
	calls   int
}

func (s *stubVision) ExtractEntries(context.Context, llm.VisionRequest) ([]entity.ExtractedEntry, []byte, error) {
	s.calls++
	return s.entries, nil, s.err
}

type stubOCR struct {
	text  string
	err   error
	calls int
}

func (s *stubOCR) Recognize(context.Context, imagedata.Image) (ocr.Recognition, error) {
	s.calls++
	return ocr.Recognition{Text: s.text}, s.err
}

var reHHMM = regexp.MustCompile(`^[0-2]?[0-9]:[0-5][0-9]$`)

func testImage(t *testing.T) imagedata.Image {
	t.Helper()
	img, err := imagedata.FromBytes([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	return img
}

func assertWellFormed(t *testing.T, entries []entity.ExtractedEntry) {
	t.Helper()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.True(t, constants.IsWeekday(e.Day), e.Day)
		assert.Regexp(t, reHHMM, e.StartTime)
		assert.Regexp(t, reHHMM, e.EndTime)
		assert.NotEmpty(t, e.Title)
	}
}

func TestVisionSuccessShortCircuits(t *testing.T) {
	vision := &stubVision{entries: []entity.ExtractedEntry{
		{Day: "Tuesday", StartTime: "08:00", EndTime: "09:00", Title: "Biology", Location: "Lab 2"},
	}}
	engine := &stubOCR{text: "Monday 09:00-10:30 Room 101 Calculus"}
	o := NewOrchestrator(Config{}, vision, engine, nil)

	res := o.Run(context.Background(), testImage(t), Hints{})
	assert.Equal(t, constants.SourceVision, res.Source)
	assert.False(t, res.Synthetic)
	assert.Equal(t, vision.entries, res.Entries)
	assert.Equal(t, 0, engine.calls)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, "ok", res.Attempts[0].Outcome)
}

func TestVisionEmptyFallsBackToHeuristic(t *testing.T) {
	vision := &stubVision{entries: []entity.ExtractedEntry{}}
	engine := &stubOCR{text: "Monday 09:00-10:30 Room 101 Calculus"}
	o := NewOrchestrator(Config{}, vision, engine, nil)

	res := o.Run(context.Background(), testImage(t), Hints{})
	assert.Equal(t, constants.SourceHeuristic, res.Source)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, entity.ExtractedEntry{
		Day: "Monday", StartTime: "09:00", EndTime: "10:30", Title: "Calculus", Location: "Room 101",
	}, res.Entries[0])
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, "empty", res.Attempts[0].Outcome)
}

func TestFullFailureReturnsFallback(t *testing.T) {
	vision := &stubVision{err: errors.New("connection refused")}
	engine := &stubOCR{err: errors.New("tesseract missing")}
	o := NewOrchestrator(Config{}, vision, engine, nil)

	res := o.Run(context.Background(), testImage(t), Hints{})
	assert.Equal(t, constants.SourceFallback, res.Source)
	assert.True(t, res.Synthetic)
	assert.Equal(t, FallbackEntries(), res.Entries)
	require.Len(t, res.Entries, 6)
	assert.Equal(t, entity.ExtractedEntry{
		Day: "Monday", StartTime: "09:00", EndTime: "10:30", Title: "Mathematics", Location: "Room 101",
	}, res.Entries[0])
	require.Len(t, res.Attempts, 3)
	assert.Equal(t, "failed", res.Attempts[0].Outcome)
	assert.Equal(t, "failed", res.Attempts[1].Outcome)
	assert.Equal(t, "connection refused", res.Attempts[0].Error)
}

func TestHeuristicWithoutTimesFallsBack(t *testing.T) {
	o := NewOrchestrator(Config{}, &stubVision{}, &stubOCR{text: "Room 101\nCalculus with Dr. Smith"}, nil)
	res := o.Run(context.Background(), testImage(t), Hints{})
	assert.Equal(t, constants.SourceFallback, res.Source)
	assert.Equal(t, "empty", res.Attempts[1].Outcome)
}

func TestNilCollaboratorsAreSkipped(t *testing.T) {
	o := NewOrchestrator(Config{}, nil, nil, nil)
	res := o.Run(context.Background(), testImage(t), Hints{})
	assert.Equal(t, constants.SourceFallback, res.Source)
	assert.Equal(t, ErrVisionUnavailable.Error(), res.Attempts[0].Error)
	assert.Equal(t, ErrOCRUnavailable.Error(), res.Attempts[1].Error)

	o = NewOrchestrator(Config{}, nil, &stubOCR{text: "Friday 1:00 PM - 2:00 PM Art"}, nil)
	res = o.Run(context.Background(), testImage(t), Hints{})
	assert.Equal(t, constants.SourceHeuristic, res.Source)
	assert.Equal(t, "13:00", res.Entries[0].StartTime)
}

func TestInvalidVisionEntriesAreDropped(t *testing.T) {
	vision := &stubVision{entries: []entity.ExtractedEntry{
		{Day: "Funday", StartTime: "08:00", EndTime: "09:00", Title: "Nope"},
		{Day: "Monday", StartTime: "later", EndTime: "09:00", Title: "Nope"},
		{Day: "Monday", StartTime: "08:00", EndTime: "09:00", Title: ""},
	}}
	o := NewOrchestrator(Config{}, vision, &stubOCR{err: errors.New("down")}, nil)
	res := o.Run(context.Background(), testImage(t), Hints{})
	assert.Equal(t, constants.SourceFallback, res.Source)
	assert.Equal(t, "empty", res.Attempts[0].Outcome)
}

func TestStagesAreTimedOutAndPanicsRecovered(t *testing.T) {
	slow := Strategy{Name: constants.SourceVision, Run: func(ctx context.Context, _ imagedata.Image, _ Hints) ([]entity.ExtractedEntry, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	boom := Strategy{Name: constants.SourceHeuristic, Run: func(context.Context, imagedata.Image, Hints) ([]entity.ExtractedEntry, error) {
		panic("bad parser")
	}}
	o := NewOrchestratorWithStrategies(Config{StageTimeout: 20 * time.Millisecond}, nil, slow, boom, FallbackStage())

	res := o.Run(context.Background(), testImage(t), Hints{})
	assert.Equal(t, constants.SourceFallback, res.Source)
	assert.Contains(t, res.Attempts[0].Error, "deadline exceeded")
	assert.Contains(t, res.Attempts[1].Error, "panicked")
}

func TestChainWithoutFallbackStillReturnsEntries(t *testing.T) {
	o := NewOrchestratorWithStrategies(Config{}, nil)
	entries := o.Extract(context.Background(), testImage(t), Hints{})
	assertWellFormed(t, entries)
	assert.Len(t, entries, 6)
}

func TestExtractAlwaysWellFormed(t *testing.T) {
	cases := []struct {
		vision *stubVision
		engine *stubOCR
	}{
		{&stubVision{err: errors.New("x")}, &stubOCR{text: ""}},
		{&stubVision{}, &stubOCR{text: "MONDAY 9:00-10:00\nmonday 9:00-10:00\nTimetable header 1:00-2:00"}},
		{&stubVision{}, &stubOCR{text: "Thursday 11:00-9:00 Drama\nWed 3:00 to 4:00 Lab-3"}},
	}
	for _, c := range cases {
		o := NewOrchestrator(Config{}, c.vision, c.engine, nil)
		assertWellFormed(t, o.Extract(context.Background(), testImage(t), Hints{Enhance: true}))
	}
}

func TestFallbackEntriesIsACopy(t *testing.T) {
	a := FallbackEntries()
	a[0].Title = "changed"
	assert.Equal(t, "Mathematics", FallbackEntries()[0].Title)
}
