package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/internal/core"
	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
	"github.com/joseph-ayodele/timetable-import/internal/core/pipeline"
)

// Usecase submits image files for one timetable, skipping content it has already seen.
type Usecase struct {
	submitter   Submitter
	timetableID uuid.UUID
	hints       pipeline.Hints
	logger      *slog.Logger

	mu   sync.Mutex
	seen map[string]uuid.UUID
}

func NewUsecase(submitter Submitter, timetableID uuid.UUID, hints pipeline.Hints, logger *slog.Logger) *Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{
		submitter:   submitter,
		timetableID: timetableID,
		hints:       hints,
		logger:      logger,
		seen:        map[string]uuid.UUID{},
	}
}

// IngestPath reads one image and submits it unless identical bytes were submitted before.
func (u *Usecase) IngestPath(ctx context.Context, path string) (FileResult, error) {
	out := FileResult{Path: path}
	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.Path = abs
	if !AllowedExt(filepath.Ext(abs)) {
		return out, fmt.Errorf("unsupported or missing extension: %q", filepath.Ext(abs))
	}

	img, err := imagedata.ReadFile(abs)
	if err != nil {
		u.logger.Warn("ingest.read.failed", "path", abs, "error", err)
		return out, err
	}
	sum := sha256.Sum256(img.Data)
	out.HashHex = hex.EncodeToString(sum[:])

	u.mu.Lock()
	if id, ok := u.seen[out.HashHex]; ok {
		u.mu.Unlock()
		out.JobID, out.Deduplicated = id, true
		u.logger.Debug("ingest.dedup", "path", abs, "hash", out.HashHex, "job_id", id)
		return out, nil
	}
	u.mu.Unlock()

	jobID, err := u.submitter.Submit(ctx, core.ImportRequest{
		TimetableID: u.timetableID,
		Image:       img,
		Hints:       u.hints,
	})
	if err != nil {
		u.logger.Error("ingest.submit.failed", "path", abs, "error", err)
		return out, err
	}
	u.mu.Lock()
	u.seen[out.HashHex] = jobID
	u.mu.Unlock()

	out.JobID = jobID
	u.logger.Info("ingest.submitted", "path", abs, "job_id", jobID, "timetable_id", u.timetableID)
	return out, nil
}
