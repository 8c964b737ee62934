package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/timetable-import/internal/core"
	"github.com/joseph-ayodele/timetable-import/internal/core/pipeline"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeSubmitter struct {
	mu   sync.Mutex
	reqs []core.ImportRequest
}

func (f *fakeSubmitter) Submit(_ context.Context, req core.ImportRequest) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return uuid.New(), nil
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestAllowedExtAndHidden(t *testing.T) {
	assert.True(t, AllowedExt(".PNG"))
	assert.True(t, AllowedExt("jpeg"))
	assert.False(t, AllowedExt(".pdf"))
	assert.True(t, IsHidden("/a/.cache"))
	assert.False(t, IsHidden("/a/week1.png"))
}

func TestIngestPath_DeduplicatesByContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeFile(t, a, pngBytes)
	writeFile(t, b, pngBytes)

	sub := &fakeSubmitter{}
	tt := uuid.New()
	u := NewUsecase(sub, tt, pipeline.Hints{Enhance: true}, nil)

	first, err := u.IngestPath(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, first.Deduplicated)
	assert.NotEmpty(t, first.HashHex)

	second, err := u.IngestPath(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.JobID, second.JobID)

	require.Len(t, sub.reqs, 1)
	assert.Equal(t, tt, sub.reqs[0].TimetableID)
	assert.True(t, sub.reqs[0].Hints.Enhance)
}

func TestIngestPath_Rejects(t *testing.T) {
	dir := t.TempDir()
	u := NewUsecase(&fakeSubmitter{}, uuid.New(), pipeline.Hints{}, nil)

	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, txt, []byte("Monday 9:00-10:00"))
	_, err := u.IngestPath(context.Background(), txt)
	assert.Error(t, err)

	fake := filepath.Join(dir, "fake.png")
	writeFile(t, fake, []byte("not really an image"))
	_, err = u.IngestPath(context.Background(), fake)
	assert.Error(t, err)
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "week1.png"), pngBytes)
	writeFile(t, filepath.Join(dir, "nested", "week2.png"), append(append([]byte{}, pngBytes...), 0x01))
	writeFile(t, filepath.Join(dir, "readme.md"), []byte("hello"))
	writeFile(t, filepath.Join(dir, ".hidden", "week3.png"), pngBytes)
	writeFile(t, filepath.Join(dir, "broken.jpg"), []byte("plain text"))

	sub := &fakeSubmitter{}
	u := NewUsecase(sub, uuid.New(), pipeline.Hints{}, nil)

	results, stats, err := u.IngestDirectory(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.EqualValues(t, 4, stats.Scanned)
	assert.EqualValues(t, 3, stats.Matched)
	assert.EqualValues(t, 2, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Failed)
	assert.Len(t, sub.reqs, 2)

	_, _, err = u.IngestDirectory(context.Background(), " ", true)
	assert.Error(t, err)
}

func TestStartWatcher_InitialScanAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.png")
	writeFile(t, existing, pngBytes)
	writeFile(t, filepath.Join(dir, "skip.txt"), []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for watcher event")
			return ""
		}
	}
	assert.Equal(t, existing, next())

	sub := filepath.Join(dir, "term2")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	created := filepath.Join(sub, "new.jpg")
	writeFile(t, created, pngBytes)
	assert.Equal(t, created, next())

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
