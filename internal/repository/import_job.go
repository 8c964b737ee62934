package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

type ImportJobRepository interface {
	Start(ctx context.Context, timetableID uuid.UUID, status constants.JobStatus) (entity.ImportJob, error)
	MarkRunning(ctx context.Context, jobID uuid.UUID) error
	Finish(ctx context.Context, jobID uuid.UUID, source constants.Source, entryCount int) error
	Fail(ctx context.Context, jobID uuid.UUID, source constants.Source, message string) error
	Get(ctx context.Context, jobID uuid.UUID) (entity.ImportJob, error)
}

type importJobRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewImportJobRepository(db *DB, logger *slog.Logger) ImportJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &importJobRepo{db: db, logger: logger}
}

func (r *importJobRepo) Start(ctx context.Context, timetableID uuid.UUID, status constants.JobStatus) (entity.ImportJob, error) {
	job := entity.ImportJob{
		ID:          uuid.New(),
		TimetableID: timetableID,
		Status:      status,
		StartedAt:   time.Now().UTC(),
	}
	q, args := r.db.builder().Insert(tableImportJobs).
		Columns("id", "timetable_id", "status", "started_at").
		Values(job.ID.String(), timetableID.String(), string(status), formatTime(job.StartedAt)).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("import_job start failed", "timetable_id", timetableID, "error", err)
		return entity.ImportJob{}, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.logger.Info("import_job started", "job_id", job.ID, "timetable_id", timetableID, "status", status)
	return job, nil
}

func (r *importJobRepo) MarkRunning(ctx context.Context, jobID uuid.UUID) error {
	return r.update(ctx, jobID, map[string]any{"status": string(constants.JobStatusRunning)})
}

func (r *importJobRepo) Finish(ctx context.Context, jobID uuid.UUID, source constants.Source, entryCount int) error {
	err := r.update(ctx, jobID, map[string]any{
		"status":      string(constants.JobStatusDone),
		"source":      string(source),
		"entry_count": entryCount,
		"finished_at": formatTime(time.Now()),
	})
	if err == nil {
		r.logger.Info("import_job finished (DONE)", "job_id", jobID, "source", source, "entries", entryCount)
	}
	return err
}

func (r *importJobRepo) Fail(ctx context.Context, jobID uuid.UUID, source constants.Source, message string) error {
	err := r.update(ctx, jobID, map[string]any{
		"status":        string(constants.JobStatusFailed),
		"source":        string(source),
		"error_message": message,
		"finished_at":   formatTime(time.Now()),
	})
	if err == nil {
		r.logger.Warn("import_job finished (FAILED)", "job_id", jobID, "error", message)
	}
	return err
}

func (r *importJobRepo) update(ctx context.Context, jobID uuid.UUID, set map[string]any) error {
	u := r.db.builder().Update(tableImportJobs)
	for _, col := range []string{"status", "source", "entry_count", "error_message", "finished_at"} {
		if v, ok := set[col]; ok {
			u.Set(col, v)
		}
	}
	q, args := u.Where(entsql.EQ("id", jobID.String())).Query()
	var res sql.Result
	if err := r.db.drv.Exec(ctx, q, args, &res); err != nil {
		r.logger.Error("import_job update failed", "job_id", jobID, "error", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", "import job "+jobID.String()+" not found", common.ErrNotFound)
	}
	return nil
}

func (r *importJobRepo) Get(ctx context.Context, jobID uuid.UUID) (entity.ImportJob, error) {
	b := r.db.builder()
	q, args := b.Select("id", "timetable_id", "status", "source", "entry_count", "error_message", "started_at", "finished_at").
		From(b.Table(tableImportJobs)).
		Where(entsql.EQ("id", jobID.String())).
		Query()

	rows := &entsql.Rows{}
	if err := r.db.drv.Query(ctx, q, args, rows); err != nil {
		return entity.ImportJob{}, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return entity.ImportJob{}, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		return entity.ImportJob{}, common.NewAppError("NOT_FOUND", "import job "+jobID.String()+" not found", common.ErrNotFound)
	}
	var (
		id, ttID, status, source, msg, started string
		count                                  int
		finished                               sql.NullString
	)
	if err := rows.Scan(&id, &ttID, &status, &source, &count, &msg, &started, &finished); err != nil {
		return entity.ImportJob{}, fmt.Errorf("%w: scan import job: %v", common.ErrDatabase, err)
	}
	job := entity.ImportJob{
		ID:           uuid.MustParse(id),
		TimetableID:  uuid.MustParse(ttID),
		Status:       constants.JobStatus(status),
		Source:       constants.Source(source),
		EntryCount:   count,
		ErrorMessage: msg,
		StartedAt:    parseTime(started),
	}
	if finished.Valid {
		t := parseTime(finished.String)
		job.FinishedAt = &t
	}
	return job, nil
}
