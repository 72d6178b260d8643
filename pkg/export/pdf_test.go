package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/dtnitsch/llm-web-summarizer/pkg/storage"
)

type failingSaver struct{}

func (failingSaver) SaveFile(string, []byte) (string, error) {
	return "", errors.New("read-only file system")
}

func sampleResult() *models.SummaryResult {
	return &models.SummaryResult{
		FullText: "• First point\n• Second point with café\n",
		Content: models.ContentRecord{
			Kind:      models.ContentKindVideo,
			SourceURL: "https://www.youtube.com/watch?v=abc",
		},
		GeneratedAt: time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC),
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "summary_1700000000123.pdf", FileName(time.UnixMilli(1_700_000_000_123)))
}

func TestExport_WritesPDF(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	exp := NewExporter(store)
	exp.now = func() time.Time { return time.UnixMilli(1_700_000_000_123) }

	result := sampleResult()
	before := *result

	path, err := exp.Export(result)
	require.NoError(t, err)

	assert.Equal(t, "summary_1700000000123.pdf", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	assert.Equal(t, before, *result, "export must not modify the summary")
}

func TestExport_NoSummary(t *testing.T) {
	exp := NewExporter(failingSaver{})

	_, err := exp.Export(nil)
	assert.ErrorIs(t, err, ErrNoSummary)

	_, err = exp.Export(&models.SummaryResult{})
	assert.ErrorIs(t, err, ErrNoSummary)
}

func TestExport_SaveFailure(t *testing.T) {
	exp := NewExporter(failingSaver{})

	_, err := exp.Export(sampleResult())

	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Contains(t, err.Error(), "read-only file system")
}

func TestRender_LongSummaryPaginates(t *testing.T) {
	result := sampleResult()
	var b bytes.Buffer
	for i := 0; i < 200; i++ {
		b.WriteString("• A reasonably long bullet point that wraps across the width of the page at least once.\n")
	}
	result.FullText = b.String()

	short, err := Render(sampleResult(), time.Now())
	require.NoError(t, err)
	data, err := Render(result, time.Now())
	require.NoError(t, err)
	assert.Greater(t, len(data), len(short))
}
