package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/core"
	"github.com/joseph-ayodele/timetable-import/internal/core/async"
	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
	"github.com/joseph-ayodele/timetable-import/internal/core/pipeline"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
	"github.com/joseph-ayodele/timetable-import/internal/export"
	"github.com/joseph-ayodele/timetable-import/internal/repository"
)

// ExtractInput is the request body shared by the gRPC and HTTP extract calls.
type ExtractInput struct {
	Image   string `json:"image"` // data URI or bare base64
	Enhance bool   `json:"enhance"`
}

// ImportInput is the request body for synchronous and queued imports.
type ImportInput struct {
	TimetableID string `json:"timetableId"`
	Image       string `json:"image"`
	Enhance     bool   `json:"enhance"`
	Replace     bool   `json:"replace"`
}

// ExportInput selects a stored timetable and an output format.
type ExportInput struct {
	TimetableID string `json:"timetableId"`
	Format      string `json:"format"`           // xlsx | ics
	WeekOf      string `json:"weekOf,omitempty"` // YYYY-MM-DD
	Name        string `json:"name,omitempty"`
}

type ExportOutput struct {
	Content     []byte `json:"content"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
}

type SubmitOutput struct {
	JobID uuid.UUID `json:"jobId"`
}

type EntriesOutput struct {
	TimetableID uuid.UUID              `json:"timetableId"`
	Entries     []entity.ScheduleEntry `json:"entries"`
}

// Service holds the transport-neutral handlers behind both the gRPC and HTTP APIs.
type Service struct {
	extractor core.Extractor
	importer  *core.Importer
	queue     async.Queue
	entries   repository.ScheduleEntryRepository
	jobs      repository.ImportJobRepository
	exporter  *export.Service
	logger    *slog.Logger
}

type Deps struct {
	Extractor core.Extractor
	Importer  *core.Importer
	Queue     async.Queue // optional; SubmitImport is unavailable without it
	Entries   repository.ScheduleEntryRepository
	Jobs      repository.ImportJobRepository
	Exporter  *export.Service
}

func NewService(d Deps, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		extractor: d.Extractor,
		importer:  d.Importer,
		queue:     d.Queue,
		entries:   d.Entries,
		jobs:      d.Jobs,
		exporter:  d.Exporter,
		logger:    logger,
	}
}

// Extract runs the pipeline without persisting anything.
func (s *Service) Extract(ctx context.Context, in ExtractInput) (pipeline.Result, error) {
	img, err := imagedata.Parse(in.Image)
	if err != nil {
		s.logger.Warn("server.extract.rejected", "req_id", common.RequestIDFromContext(ctx), "error", err)
		return pipeline.Result{}, err
	}
	return s.ExtractImage(ctx, img, in.Enhance), nil
}

func (s *Service) ExtractImage(ctx context.Context, img imagedata.Image, enhance bool) pipeline.Result {
	return s.extractor.Run(ctx, img, pipeline.Hints{Enhance: enhance})
}

func (s *Service) Import(ctx context.Context, in ImportInput) (core.ImportResult, error) {
	req, err := s.importRequest(in)
	if err != nil {
		return core.ImportResult{}, err
	}
	return s.importer.Import(ctx, req)
}

func (s *Service) Submit(ctx context.Context, in ImportInput) (SubmitOutput, error) {
	if s.queue == nil {
		return SubmitOutput{}, common.NewAppError("UNAVAILABLE", "async imports are disabled", common.ErrInternal)
	}
	req, err := s.importRequest(in)
	if err != nil {
		return SubmitOutput{}, err
	}
	id, err := s.queue.Submit(ctx, req)
	if err != nil {
		return SubmitOutput{}, err
	}
	return SubmitOutput{JobID: id}, nil
}

func (s *Service) ListEntries(ctx context.Context, timetableID string) (EntriesOutput, error) {
	id, err := common.ParseUUID("timetable_id", timetableID)
	if err != nil {
		return EntriesOutput{}, err
	}
	rows, err := s.entries.ListByTimetable(ctx, id)
	if err != nil {
		return EntriesOutput{}, err
	}
	if rows == nil {
		rows = []entity.ScheduleEntry{}
	}
	return EntriesOutput{TimetableID: id, Entries: rows}, nil
}

func (s *Service) GetJob(ctx context.Context, jobID string) (entity.ImportJob, error) {
	id, err := common.ParseUUID("job_id", jobID)
	if err != nil {
		return entity.ImportJob{}, err
	}
	return s.jobs.Get(ctx, id)
}

func (s *Service) Export(ctx context.Context, in ExportInput) (ExportOutput, error) {
	id, err := common.ParseUUID("timetable_id", in.TimetableID)
	if err != nil {
		return ExportOutput{}, err
	}
	switch strings.ToLower(strings.TrimSpace(in.Format)) {
	case "xlsx", "":
		b, err := s.exporter.ExportXLSX(ctx, id)
		if err != nil {
			return ExportOutput{}, err
		}
		return ExportOutput{
			Content:     b,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    "timetable-" + id.String() + ".xlsx",
		}, nil
	case "ics":
		opts := export.ICSOptions{Name: in.Name}
		if in.WeekOf != "" {
			t, err := time.Parse("2006-01-02", in.WeekOf)
			if err != nil {
				return ExportOutput{}, common.NewAppError("INVALID_ARGUMENT", "weekOf must be YYYY-MM-DD", common.ErrInvalidInput)
			}
			opts.WeekOf = t
		}
		b, err := s.exporter.ExportICS(ctx, id, opts)
		if err != nil {
			return ExportOutput{}, err
		}
		return ExportOutput{
			Content:     b,
			ContentType: "text/calendar; charset=utf-8",
			Filename:    "timetable-" + id.String() + ".ics",
		}, nil
	default:
		return ExportOutput{}, common.NewAppError("INVALID_ARGUMENT", "format must be xlsx or ics", common.ErrInvalidInput)
	}
}

func (s *Service) importRequest(in ImportInput) (core.ImportRequest, error) {
	id, err := common.ParseUUID("timetable_id", in.TimetableID)
	if err != nil {
		return core.ImportRequest{}, err
	}
	img, err := imagedata.Parse(in.Image)
	if err != nil {
		return core.ImportRequest{}, err
	}
	return core.ImportRequest{
		TimetableID: id,
		Image:       img,
		Hints:       pipeline.Hints{Enhance: in.Enhance},
		Replace:     in.Replace,
	}, nil
}
