package repository

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	tableScheduleEntries = "schedule_entries"
	tableImportJobs      = "import_jobs"
)

// ddl is valid on both Postgres and SQLite; every statement is idempotent.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS ` + tableScheduleEntries + ` (
	id varchar(36) NOT NULL PRIMARY KEY,
	timetable_id varchar(36) NOT NULL,
	job_id varchar(36),
	ordinal integer NOT NULL,
	day varchar(16) NOT NULL,
	day_index integer NOT NULL,
	start_time varchar(5) NOT NULL,
	end_time varchar(5) NOT NULL,
	start_minutes integer NOT NULL,
	title text NOT NULL,
	location text NOT NULL DEFAULT '',
	created_at varchar(40) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS ` + tableImportJobs + ` (
	id varchar(36) NOT NULL PRIMARY KEY,
	timetable_id varchar(36) NOT NULL,
	status varchar(16) NOT NULL,
	source varchar(16) NOT NULL DEFAULT '',
	entry_count integer NOT NULL DEFAULT 0,
	error_message text NOT NULL DEFAULT '',
	started_at varchar(40) NOT NULL,
	finished_at varchar(40)
)`,
	`CREATE INDEX IF NOT EXISTS schedule_entries_timetable_idx ON ` + tableScheduleEntries + ` (timetable_id)`,
	`CREATE INDEX IF NOT EXISTS import_jobs_timetable_idx ON ` + tableImportJobs + ` (timetable_id)`,
}

// Migrate creates the tables and indexes if they do not exist.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, q := range ddl {
		if err := db.drv.Exec(ctx, q, []any{}, nil); err != nil {
			logger.Error("migrate failed", "query", q, "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Info("migrate.ok", "dialect", db.Dialect())
	return nil
}
