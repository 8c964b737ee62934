package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

type ScheduleEntryRepository interface {
	// CreateBatch inserts one row per entry, in order, without a surrounding transaction.
	// On failure it returns the rows already written together with the error.
	CreateBatch(ctx context.Context, timetableID uuid.UUID, jobID *uuid.UUID, entries []entity.ExtractedEntry) ([]entity.ScheduleEntry, error)
	ListByTimetable(ctx context.Context, timetableID uuid.UUID) ([]entity.ScheduleEntry, error)
	DeleteByTimetable(ctx context.Context, timetableID uuid.UUID) (int64, error)
}

type scheduleEntryRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewScheduleEntryRepository(db *DB, logger *slog.Logger) ScheduleEntryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleEntryRepo{db: db, logger: logger}
}

var scheduleEntryColumns = []string{
	"id", "timetable_id", "job_id", "ordinal", "day", "day_index",
	"start_time", "end_time", "start_minutes", "title", "location", "created_at",
}

func (r *scheduleEntryRepo) CreateBatch(ctx context.Context, timetableID uuid.UUID, jobID *uuid.UUID, entries []entity.ExtractedEntry) ([]entity.ScheduleEntry, error) {
	out := make([]entity.ScheduleEntry, 0, len(entries))
	var job any
	if jobID != nil {
		job = jobID.String()
	}
	for i, e := range entries {
		row := entity.ScheduleEntry{
			ID:             uuid.New(),
			TimetableID:    timetableID,
			JobID:          jobID,
			Position:       i,
			ExtractedEntry: e,
			CreatedAt:      time.Now().UTC(),
		}
		q, args := r.db.builder().Insert(tableScheduleEntries).
			Columns(scheduleEntryColumns...).
			Values(
				row.ID.String(), timetableID.String(), job, i, e.Day, constants.Weekday(e.Day).Index(),
				e.StartTime, e.EndTime, minutesOf(e.StartTime), e.Title, e.Location, formatTime(row.CreatedAt),
			).
			Query()
		if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
			r.logger.Error("schedule_entries insert failed",
				"timetable_id", timetableID, "ordinal", i, "inserted", len(out), "error", err)
			return out, common.NewAppError("DB_ERROR", fmt.Sprintf("insert schedule entry %d", i), fmt.Errorf("%w: %v", common.ErrDatabase, err))
		}
		out = append(out, row)
	}
	r.logger.Info("schedule_entries created", "timetable_id", timetableID, "count", len(out))
	return out, nil
}

func (r *scheduleEntryRepo) ListByTimetable(ctx context.Context, timetableID uuid.UUID) ([]entity.ScheduleEntry, error) {
	b := r.db.builder()
	q, args := b.Select(scheduleEntryColumns...).
		From(b.Table(tableScheduleEntries)).
		Where(entsql.EQ("timetable_id", timetableID.String())).
		OrderBy("day_index", "start_minutes", "created_at", "ordinal").
		Query()

	rows := &entsql.Rows{}
	if err := r.db.drv.Query(ctx, q, args, rows); err != nil {
		r.logger.Error("schedule_entries list failed", "timetable_id", timetableID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.ScheduleEntry
	for rows.Next() {
		var (
			id, ttID, day, start, end, title, loc, created string
			jobID                                          sql.NullString
			ordinal, dayIndex, startMinutes                int
		)
		if err := rows.Scan(&id, &ttID, &jobID, &ordinal, &day, &dayIndex, &start, &end, &startMinutes, &title, &loc, &created); err != nil {
			return nil, fmt.Errorf("%w: scan schedule entry: %v", common.ErrDatabase, err)
		}
		row := entity.ScheduleEntry{
			ID:          uuid.MustParse(id),
			TimetableID: uuid.MustParse(ttID),
			Position:    ordinal,
			ExtractedEntry: entity.ExtractedEntry{
				Day: day, StartTime: start, EndTime: end, Title: title, Location: loc,
			},
			CreatedAt: parseTime(created),
		}
		if jobID.Valid {
			if jid, err := uuid.Parse(jobID.String); err == nil {
				row.JobID = &jid
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *scheduleEntryRepo) DeleteByTimetable(ctx context.Context, timetableID uuid.UUID) (int64, error) {
	q, args := r.db.builder().Delete(tableScheduleEntries).
		Where(entsql.EQ("timetable_id", timetableID.String())).
		Query()
	var res sql.Result
	if err := r.db.drv.Exec(ctx, q, args, &res); err != nil {
		r.logger.Error("schedule_entries delete failed", "timetable_id", timetableID, "error", err)
		return 0, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	n, _ := res.RowsAffected()
	r.logger.Info("schedule_entries deleted", "timetable_id", timetableID, "count", n)
	return n, nil
}

// minutesOf converts H:MM or HH:MM to minutes after midnight, or -1.
func minutesOf(hhmm string) int {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return -1
	}
	hi, err1 := strconv.Atoi(h)
	mi, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil {
		return -1
	}
	return hi*60 + mi
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
