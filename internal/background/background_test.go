package background

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/dtnitsch/llm-web-summarizer/pkg/db"
	"github.com/dtnitsch/llm-web-summarizer/pkg/scheduler"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) NewTicker(time.Duration) scheduler.Ticker { return idleTicker{} }

type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}

func setup(t *testing.T, now time.Time) (*Service, *db.DB) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "bg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := models.EvictionConfig{Interval: 5 * time.Minute, MaxAge: 30 * time.Minute}
	return New(store, fixedClock{now: now}, cfg, logger), store
}

func TestInstall_ClearsOnNewVersion(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, time.Now())

	require.NoError(t, store.Put(ctx, "stale", "x"))

	cleared, err := svc.Install(ctx, "1.0.0")
	require.NoError(t, err)
	assert.True(t, cleared)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyInstalledVersion}, keys)

	require.NoError(t, store.Put(ctx, "kept", "y"))
	cleared, err = svc.Install(ctx, "1.0.0")
	require.NoError(t, err)
	assert.False(t, cleared)

	_, ok, err := store.Get(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHandleEvent_StoresContent(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	svc, store := setup(t, now)

	content := models.ContentRecord{Kind: models.ContentKindWebpage, Text: "hello", SourceURL: "https://example.com"}
	svc.HandleEvent(ctx, models.Event{Type: models.EventContentExtracted, Content: content})

	got, at, ok, err := store.LastExtraction(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, content, got)
	assert.True(t, at.Equal(now))
}

func TestHandleEvent_IgnoresOtherTypes(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, time.Now())

	svc.HandleEvent(ctx, models.Event{Type: "somethingElse"})

	_, _, ok, err := store.LastExtraction(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStart_SweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc, store := setup(t, now)

	require.NoError(t, store.SaveExtraction(ctx, models.ContentRecord{Text: "old"}, now.Add(-time.Hour)))

	require.NoError(t, svc.Start(ctx))
	svc.Stop()

	_, _, ok, err := store.LastExtraction(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
