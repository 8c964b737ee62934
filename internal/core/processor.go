package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
	"github.com/joseph-ayodele/timetable-import/internal/core/pipeline"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
	"github.com/joseph-ayodele/timetable-import/internal/repository"
)

// Extractor is satisfied by *pipeline.Orchestrator.
type Extractor interface {
	Run(ctx context.Context, img imagedata.Image, hints pipeline.Hints) pipeline.Result
}

type ImportRequest struct {
	TimetableID uuid.UUID
	Image       imagedata.Image
	Hints       pipeline.Hints
	// Replace removes the timetable's existing entries before inserting.
	Replace bool
}

type ImportResult struct {
	JobID       uuid.UUID              `json:"jobId"`
	TimetableID uuid.UUID              `json:"timetableId"`
	Entries     []entity.ScheduleEntry `json:"entries"`
	Source      constants.Source       `json:"source"`
	Synthetic   bool                   `json:"synthetic"`
	Attempts    []pipeline.Attempt     `json:"attempts,omitempty"`
}

// Importer runs extraction for an image and persists the entries against an import job.
type Importer struct {
	logger    *slog.Logger
	extractor Extractor
	entries   repository.ScheduleEntryRepository
	jobs      repository.ImportJobRepository
}

func NewImporter(
	logger *slog.Logger,
	extractor Extractor,
	entries repository.ScheduleEntryRepository,
	jobs repository.ImportJobRepository,
) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{logger: logger, extractor: extractor, entries: entries, jobs: jobs}
}

// Import creates a RUNNING job and processes it synchronously.
func (p *Importer) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	if err := checkRequest(req); err != nil {
		return ImportResult{}, err
	}
	job, err := p.jobs.Start(ctx, req.TimetableID, constants.JobStatusRunning)
	if err != nil {
		return ImportResult{}, fmt.Errorf("start import job: %w", err)
	}
	return p.process(ctx, job.ID, req)
}

// Prepare records a QUEUED job for later processing with ProcessJob.
func (p *Importer) Prepare(ctx context.Context, req ImportRequest) (uuid.UUID, error) {
	if err := checkRequest(req); err != nil {
		return uuid.Nil, err
	}
	job, err := p.jobs.Start(ctx, req.TimetableID, constants.JobStatusQueued)
	if err != nil {
		return uuid.Nil, fmt.Errorf("start import job: %w", err)
	}
	return job.ID, nil
}

// Abandon marks a prepared job FAILED when it never reached a worker.
func (p *Importer) Abandon(ctx context.Context, jobID uuid.UUID, cause error) error {
	if err := p.jobs.Fail(context.WithoutCancel(ctx), jobID, "", cause.Error()); err != nil {
		p.logger.Error("import.job.abandon_failed", "job_id", jobID, "error", err)
		return err
	}
	p.logger.Warn("import.job.abandoned", "job_id", jobID, "error", cause)
	return nil
}

// ProcessJob advances a queued job to RUNNING and processes it.
func (p *Importer) ProcessJob(ctx context.Context, jobID uuid.UUID, req ImportRequest) (ImportResult, error) {
	if err := p.jobs.MarkRunning(ctx, jobID); err != nil {
		return ImportResult{JobID: jobID, TimetableID: req.TimetableID}, err
	}
	return p.process(ctx, jobID, req)
}

func (p *Importer) process(ctx context.Context, jobID uuid.UUID, req ImportRequest) (ImportResult, error) {
	out := ImportResult{JobID: jobID, TimetableID: req.TimetableID}
	// Job bookkeeping must land even if the caller's context is gone.
	bg := context.WithoutCancel(ctx)

	res := p.extractor.Run(ctx, req.Image, req.Hints)
	out.Source, out.Synthetic, out.Attempts = res.Source, res.Synthetic, res.Attempts
	if res.Synthetic {
		p.logger.Warn("import.job.synthetic", "job_id", jobID, "timetable_id", req.TimetableID, "entries", len(res.Entries))
	}

	if req.Replace {
		n, err := p.entries.DeleteByTimetable(ctx, req.TimetableID)
		if err != nil {
			_ = p.jobs.Fail(bg, jobID, res.Source, err.Error())
			p.logger.Error("import.job.failed", "job_id", jobID, "step", "replace", "error", err)
			return out, fmt.Errorf("replace entries: %w", err)
		}
		p.logger.Debug("import.job.replaced", "job_id", jobID, "removed", n)
	}

	rows, err := p.entries.CreateBatch(ctx, req.TimetableID, &jobID, res.Entries)
	out.Entries = rows
	if err != nil {
		_ = p.jobs.Fail(bg, jobID, res.Source, err.Error())
		p.logger.Error("import.job.failed", "job_id", jobID, "step", "create", "inserted", len(rows), "error", err)
		return out, fmt.Errorf("create entries: %w", err)
	}

	if err := p.jobs.Finish(bg, jobID, res.Source, len(rows)); err != nil {
		return out, fmt.Errorf("finish import job: %w", err)
	}
	p.logger.Info("import.job.done",
		"job_id", jobID,
		"timetable_id", req.TimetableID,
		"source", res.Source,
		"entries", len(rows),
	)
	return out, nil
}

func checkRequest(req ImportRequest) error {
	if req.TimetableID == uuid.Nil {
		return common.NewAppError("INVALID_ARGUMENT", "timetable_id is required", common.ErrInvalidInput)
	}
	if len(req.Image.Data) == 0 {
		return common.ErrEmptyImage
	}
	return nil
}
