package llm

import (
	"context"

	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

// VisionRequest carries one image to a vision-capable extraction service.
type VisionRequest struct {
	Image imagedata.Image
	// Enhance asks the service for a more careful pass. It only adjusts the prompt.
	Enhance bool
}

// VisionExtractor is the interface the pipeline depends on. An empty slice with a nil
// error means the service answered but found nothing usable.
type VisionExtractor interface {
	ExtractEntries(ctx context.Context, req VisionRequest) ([]entity.ExtractedEntry, []byte /*rawJSON*/, error)
}
