package db

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/llm-web-summarizer/models"
	dbpkg "github.com/dtnitsch/llm-web-summarizer/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *dbpkg.DB {
	t.Helper()
	database, err := dbpkg.Open(filepath.Join(t.TempDir(), "report.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestWriteReport_Empty(t *testing.T) {
	database := openTestStore(t)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(context.Background(), &buf, database, time.Now()))
	assert.Contains(t, buf.String(), "Storage is empty")
}

func TestWriteReport_LastExtraction(t *testing.T) {
	database := openTestStore(t)
	ctx := context.Background()

	at := time.UnixMilli(1_700_000_000_000)
	content := models.ContentRecord{
		Kind:      models.ContentKindWebpage,
		Text:      "alpha beta gamma",
		SourceURL: "https://example.com/post",
		Title:     "Post",
	}
	require.NoError(t, database.SaveExtraction(ctx, content, at))

	var buf bytes.Buffer
	require.NoError(t, WriteReport(ctx, &buf, database, at.Add(12*time.Minute)))

	out := buf.String()
	assert.Contains(t, out, "extractionTime, lastExtractedContent")
	assert.Contains(t, out, "URL:         https://example.com/post")
	assert.Contains(t, out, "Title:       Post")
	assert.Contains(t, out, "(12m0s ago)")
	assert.Contains(t, out, "3 words | ~4 tokens")
}

func TestWriteReport_KeysWithoutExtraction(t *testing.T) {
	database := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, database.Put(ctx, "installedVersion", "dev"))

	var buf bytes.Buffer
	require.NoError(t, WriteReport(ctx, &buf, database, time.Now()))
	assert.Contains(t, buf.String(), "No extracted content stored")
}
