package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/internal/entity"
	"github.com/joseph-ayodele/timetable-import/internal/repository"
)

// Service renders a stored timetable in the supported export formats.
type Service struct {
	entries repository.ScheduleEntryRepository
	logger  *slog.Logger
}

func NewService(entries repository.ScheduleEntryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{entries: entries, logger: logger}
}

// ExportXLSX returns the timetable's entries as an XLSX workbook.
func (s *Service) ExportXLSX(ctx context.Context, timetableID uuid.UUID) ([]byte, error) {
	start := time.Now()
	entries, err := s.load(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	b, err := WriteXLSX(entries)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"timetable_id", timetableID,
		"rows", len(entries),
		"bytes", len(b),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// ExportICS returns the timetable's entries as an iCalendar document.
func (s *Service) ExportICS(ctx context.Context, timetableID uuid.UUID, opts ICSOptions) ([]byte, error) {
	entries, err := s.load(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	n, err := WriteICS(&buf, entries, opts)
	if err != nil {
		return nil, err
	}
	if n < len(entries) {
		s.logger.Warn("export.ics.skipped", "timetable_id", timetableID, "skipped", len(entries)-n)
	}
	s.logger.Info("export.ics.ok", "timetable_id", timetableID, "events", n, "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (s *Service) load(ctx context.Context, timetableID uuid.UUID) ([]entity.ExtractedEntry, error) {
	rows, err := s.entries.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	out := make([]entity.ExtractedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ExtractedEntry)
	}
	return out, nil
}
