package pipeline

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/core/heuristic"
	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
	"github.com/joseph-ayodele/timetable-import/internal/core/ocr"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
	"github.com/joseph-ayodele/timetable-import/internal/llm"
)

var (
	ErrVisionUnavailable = errors.New("vision service not configured")
	ErrOCRUnavailable    = errors.New("ocr engine not configured")
)

// Hints are optional caller preferences.
type Hints struct {
	Enhance bool `json:"enhance"`
}

// StageFunc returns the entries one stage could recover. An empty result or an error
// both advance the chain.
type StageFunc func(ctx context.Context, img imagedata.Image, hints Hints) ([]entity.ExtractedEntry, error)

// Strategy is one named step of the fallback chain.
type Strategy struct {
	Name constants.Source
	Run  StageFunc
}

// VisionStage asks the vision service for entries.
func VisionStage(vision llm.VisionExtractor) Strategy {
	return Strategy{Name: constants.SourceVision, Run: func(ctx context.Context, img imagedata.Image, hints Hints) ([]entity.ExtractedEntry, error) {
		if vision == nil {
			return nil, ErrVisionUnavailable
		}
		entries, _, err := vision.ExtractEntries(ctx, llm.VisionRequest{Image: img, Enhance: hints.Enhance})
		return entries, err
	}}
}

// HeuristicStage recognizes text with the OCR engine and parses it line by line.
func HeuristicStage(engine ocr.Engine, parser *heuristic.Parser) Strategy {
	return Strategy{Name: constants.SourceHeuristic, Run: func(ctx context.Context, img imagedata.Image, _ Hints) ([]entity.ExtractedEntry, error) {
		if engine == nil {
			return nil, ErrOCRUnavailable
		}
		rec, err := engine.Recognize(ctx, img)
		if err != nil {
			return nil, err
		}
		return parser.ParseText(rec.Text), nil
	}}
}

// FallbackStage always yields the placeholder timetable.
func FallbackStage() Strategy {
	return Strategy{Name: constants.SourceFallback, Run: func(context.Context, imagedata.Image, Hints) ([]entity.ExtractedEntry, error) {
		return FallbackEntries(), nil
	}}
}
