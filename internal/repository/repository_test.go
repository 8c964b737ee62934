package repository

import (
	"context"
	"errors"
	"testing"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	require.NoError(t, Migrate(ctx, db, nil))
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), db, nil))
	assert.Equal(t, "sqlite3", db.Dialect())
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	rows := &entsql.Rows{}
	require.NoError(t, db.drv.Query(ctx, "SELECT name FROM sqlite_master WHERE type IN ('table', 'index') ORDER BY name", []any{}, rows))
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Subset(t, names, []string{
		tableImportJobs, "import_jobs_timetable_idx",
		tableScheduleEntries, "schedule_entries_timetable_idx",
	})
}

func TestIsSQLiteDSN(t *testing.T) {
	assert.True(t, IsSQLiteDSN(":memory:"))
	assert.True(t, IsSQLiteDSN("file:timetable.db"))
	assert.True(t, IsSQLiteDSN("sqlite:///tmp/x.db"))
	assert.False(t, IsSQLiteDSN("postgres://localhost/timetable"))
}

func TestScheduleEntries_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleEntryRepository(openTestDB(t), nil)
	tt := uuid.New()
	other := uuid.New()
	job := uuid.New()

	entries := []entity.ExtractedEntry{
		{Day: "Wednesday", StartTime: "10:00", EndTime: "11:30", Title: "English Literature", Location: "Room 201"},
		{Day: "Monday", StartTime: "11:00", EndTime: "12:30", Title: "Physics", Location: "Room 102"},
		{Day: "Monday", StartTime: "9:00", EndTime: "10:30", Title: "Mathematics"},
	}
	created, err := repo.CreateBatch(ctx, tt, &job, entries)
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, 2, created[2].Position)

	_, err = repo.CreateBatch(ctx, other, nil, entries[:1])
	require.NoError(t, err)

	got, err := repo.ListByTimetable(ctx, tt)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Mathematics", got[0].Title)
	assert.Equal(t, "", got[0].Location)
	assert.Equal(t, "Physics", got[1].Title)
	assert.Equal(t, "English Literature", got[2].Title)
	require.NotNil(t, got[0].JobID)
	assert.Equal(t, job, *got[0].JobID)
	assert.False(t, got[0].CreatedAt.IsZero())

	n, err := repo.DeleteByTimetable(ctx, tt)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err = repo.ListByTimetable(ctx, tt)
	require.NoError(t, err)
	assert.Empty(t, got)

	rest, err := repo.ListByTimetable(ctx, other)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, rest[0].JobID)
}

func TestImportJobs_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewImportJobRepository(openTestDB(t), nil)
	tt := uuid.New()

	job, err := repo.Start(ctx, tt, constants.JobStatusQueued)
	require.NoError(t, err)

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusQueued, got.Status)
	assert.Equal(t, tt, got.TimetableID)
	assert.Nil(t, got.FinishedAt)

	require.NoError(t, repo.MarkRunning(ctx, job.ID))
	got, err = repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusRunning, got.Status)

	require.NoError(t, repo.Finish(ctx, job.ID, constants.SourceHeuristic, 4))
	got, err = repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusDone, got.Status)
	assert.Equal(t, constants.SourceHeuristic, got.Source)
	assert.Equal(t, 4, got.EntryCount)
	require.NotNil(t, got.FinishedAt)
	assert.False(t, got.FinishedAt.Before(got.StartedAt))
}

func TestImportJobs_Fail(t *testing.T) {
	ctx := context.Background()
	repo := NewImportJobRepository(openTestDB(t), nil)

	job, err := repo.Start(ctx, uuid.New(), constants.JobStatusRunning)
	require.NoError(t, err)
	require.NoError(t, repo.Fail(ctx, job.ID, constants.SourceFallback, "insert failed"))

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusFailed, got.Status)
	assert.Equal(t, "insert failed", got.ErrorMessage)
}

func TestImportJobs_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewImportJobRepository(openTestDB(t), nil)

	_, err := repo.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = repo.MarkRunning(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestHealthCheckAndWaitReady(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, HealthCheck(ctx, db, 0))
	require.NoError(t, WaitReady(ctx, db, 2, nil))
}

func TestMinutesOf(t *testing.T) {
	assert.Equal(t, 540, minutesOf("9:00"))
	assert.Equal(t, 810, minutesOf("13:30"))
	assert.Equal(t, -1, minutesOf("noon"))
}
