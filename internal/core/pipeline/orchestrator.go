// Package pipeline drives the extraction fallback chain: vision service, then OCR text
// through the heuristic parser, then the fixed placeholder timetable.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/core/heuristic"
	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
	"github.com/joseph-ayodele/timetable-import/internal/core/ocr"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
	"github.com/joseph-ayodele/timetable-import/internal/llm"
)

const DefaultStageTimeout = 8 * time.Second

type Config struct {
	StageTimeout time.Duration
}

// Attempt describes how one stage went.
type Attempt struct {
	Stage     constants.Source `json:"stage"`
	Outcome   string           `json:"outcome"` // ok | empty | failed
	Error     string           `json:"error,omitempty"`
	ElapsedMS int64            `json:"elapsed_ms"`
}

// Result is the extraction outcome. Entries is never empty.
type Result struct {
	Entries   []entity.ExtractedEntry `json:"entries"`
	Source    constants.Source        `json:"source"`
	Synthetic bool                    `json:"synthetic"`
	Attempts  []Attempt               `json:"attempts,omitempty"`
}

type Orchestrator struct {
	cfg        Config
	strategies []Strategy
	logger     *slog.Logger
}

// NewOrchestrator wires the standard chain. Either collaborator may be nil, in which case
// its stage is reported as failed and skipped.
func NewOrchestrator(cfg Config, vision llm.VisionExtractor, engine ocr.Engine, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return NewOrchestratorWithStrategies(cfg, logger,
		VisionStage(vision),
		HeuristicStage(engine, heuristic.NewParser(logger)),
		FallbackStage(),
	)
}

// NewOrchestratorWithStrategies runs the given strategies in order.
func NewOrchestratorWithStrategies(cfg Config, logger *slog.Logger, strategies ...Strategy) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = DefaultStageTimeout
	}
	return &Orchestrator{cfg: cfg, strategies: strategies, logger: logger}
}

// Extract returns the entries of Run.
func (o *Orchestrator) Extract(ctx context.Context, img imagedata.Image, hints Hints) []entity.ExtractedEntry {
	return o.Run(ctx, img, hints).Entries
}

// Run folds over the strategies in order and returns the first non-empty, valid batch.
// Stages run one after another, each under its own timeout, and are never retried.
func (o *Orchestrator) Run(ctx context.Context, img imagedata.Image, hints Hints) Result {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()
	attempts := make([]Attempt, 0, len(o.strategies))

	for _, s := range o.strategies {
		o.logger.Debug("pipeline.stage.start", "req_id", rid, "stage", s.Name)
		stageStart := time.Now()
		entries, err := o.runStage(ctx, s, img, hints)
		att := Attempt{Stage: s.Name, ElapsedMS: time.Since(stageStart).Milliseconds()}

		if err != nil {
			att.Outcome, att.Error = "failed", err.Error()
			attempts = append(attempts, att)
			o.logger.Warn("pipeline.stage.failed", "req_id", rid, "stage", s.Name, "error", err, "elapsed_ms", att.ElapsedMS)
			continue
		}
		valid := o.validEntries(rid, s.Name, entries)
		if len(valid) == 0 {
			att.Outcome = "empty"
			attempts = append(attempts, att)
			o.logger.Warn("pipeline.stage.empty", "req_id", rid, "stage", s.Name, "raw_entries", len(entries), "elapsed_ms", att.ElapsedMS)
			continue
		}

		att.Outcome = "ok"
		attempts = append(attempts, att)
		o.logger.Info("pipeline.extract.ok",
			"req_id", rid,
			"source", s.Name,
			"entries", len(valid),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{
			Entries:   valid,
			Source:    s.Name,
			Synthetic: s.Name == constants.SourceFallback,
			Attempts:  attempts,
		}
	}

	// Only reachable with a custom chain lacking a fallback stage.
	o.logger.Error("pipeline.extract.exhausted", "req_id", rid, "stages", len(o.strategies))
	return Result{
		Entries:   FallbackEntries(),
		Source:    constants.SourceFallback,
		Synthetic: true,
		Attempts:  attempts,
	}
}

func (o *Orchestrator) runStage(ctx context.Context, s Strategy, img imagedata.Image, hints Hints) (entries []entity.ExtractedEntry, err error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			entries, err = nil, fmt.Errorf("stage %s panicked: %v", s.Name, r)
		}
	}()
	return s.Run(ctx, img, hints)
}

func (o *Orchestrator) validEntries(rid string, stage constants.Source, entries []entity.ExtractedEntry) []entity.ExtractedEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]entity.ExtractedEntry, 0, len(entries))
	for i, e := range entries {
		if err := common.ValidateEntry(e); err != nil {
			o.logger.Warn("pipeline.entry.invalid", "req_id", rid, "stage", stage, "index", i, "error", err)
			continue
		}
		out = append(out, e)
	}
	return out
}
