// Package app wires configuration into the pipeline, persistence and services used by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/core"
	"github.com/joseph-ayodele/timetable-import/internal/core/ocr"
	"github.com/joseph-ayodele/timetable-import/internal/core/pipeline"
	"github.com/joseph-ayodele/timetable-import/internal/export"
	"github.com/joseph-ayodele/timetable-import/internal/llm"
	"github.com/joseph-ayodele/timetable-import/internal/llm/openai"
	"github.com/joseph-ayodele/timetable-import/internal/repository"
)

// NewPipeline builds the extraction chain. A missing OPENAI_API_KEY or OCR_ENGINE=none
// leaves the corresponding stage unavailable rather than failing startup.
func NewPipeline(cfg *common.Config, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	var vision llm.VisionExtractor
	if cfg.Vision.APIKey != "" {
		vision = openai.NewClient(openai.Config{
			APIKey:      cfg.Vision.APIKey,
			BaseURL:     cfg.Vision.BaseURL,
			Model:       cfg.Vision.Model,
			Temperature: cfg.Vision.Temperature,
			Timeout:     cfg.Vision.Timeout,
		}, logger)
	} else {
		logger.Warn("app.vision.disabled", "reason", "OPENAI_API_KEY not set")
	}

	engine, err := ocr.New(ocr.Config{
		Engine:              cfg.OCR.Engine,
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		PSM:                 cfg.OCR.PSM,
		EnableTSVConfidence: cfg.OCR.EnableTSV,
		WorkDir:             cfg.OCR.WorkDir,
		RemoteURL:           cfg.OCR.RemoteURL,
		RemoteToken:         cfg.OCR.RemoteToken,
		RemoteLocale:        cfg.OCR.RemoteLocale,
		RemoteTimeout:       cfg.Pipeline.StageTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("ocr engine: %w", err)
	}
	if engine == nil {
		logger.Warn("app.ocr.disabled", "engine", cfg.OCR.Engine)
	}

	return pipeline.NewOrchestrator(pipeline.Config{StageTimeout: cfg.Pipeline.StageTimeout}, vision, engine, logger), nil
}

// Store is the opened database with its repositories.
type Store struct {
	DB      *repository.DB
	Entries repository.ScheduleEntryRepository
	Jobs    repository.ImportJobRepository
}

// OpenStore connects, waits for readiness and migrates.
func OpenStore(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	db, err := repository.OpenURL(ctx, repository.Config{
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repository.WaitReady(ctx, db, 5, logger); err != nil {
		repository.Close(db, logger)
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	if err := repository.Migrate(ctx, db, logger); err != nil {
		repository.Close(db, logger)
		return nil, err
	}
	return &Store{
		DB:      db,
		Entries: repository.NewScheduleEntryRepository(db, logger),
		Jobs:    repository.NewImportJobRepository(db, logger),
	}, nil
}

func (s *Store) Close(logger *slog.Logger) { repository.Close(s.DB, logger) }

// Importer wires the orchestrator to the store.
func (s *Store) Importer(orch *pipeline.Orchestrator, logger *slog.Logger) *core.Importer {
	return core.NewImporter(logger, orch, s.Entries, s.Jobs)
}

func (s *Store) Exporter(logger *slog.Logger) *export.Service {
	return export.NewService(s.Entries, logger)
}
