package extractor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/dtnitsch/llm-web-summarizer/pkg/fetcher"
)

const pageHTML = `<html><head><title>Tide Tables</title></head><body>
<nav>Home</nav>
<article><h1>Tide Tables</h1>
<p>Tides are the rise and fall of sea levels caused by the combined effects of the gravitational
forces exerted by the Moon and the Sun and the rotation of the Earth. Tide tables can be used for
any given locale to find the predicted times and amplitude of the tides.</p>
<p>The tidal range varies from place to place and is largest in narrow bays and estuaries where the
water is funnelled into a smaller area as the tide comes in.</p>
</article></body></html>`

func newTestExtractor(t *testing.T, srv *httptest.Server) *Extractor {
	t.Helper()
	return New(fetcher.NewFetcher(srv.Client()), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtract_Webpage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageHTML))
	}))
	defer srv.Close()

	record, err := newTestExtractor(t, srv).Extract(context.Background(), srv.URL+"/tides")
	require.NoError(t, err)

	assert.Equal(t, models.ContentKindWebpage, record.Kind)
	assert.Equal(t, srv.URL+"/tides", record.SourceURL)
	assert.Contains(t, record.Text, "rise and fall of sea levels")
	assert.False(t, record.HasTranscript)
	assert.Equal(t, "English", record.Language)
}

func TestExtract_FetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestExtractor(t, srv).Extract(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestTab_SeekTo(t *testing.T) {
	var out bytes.Buffer
	tab := NewTab("https://www.youtube.com/watch?v=abc123", nil, &out)

	require.NoError(t, tab.SeekTo(context.Background(), 125))
	assert.Equal(t, "▶ https://www.youtube.com/watch?v=abc123&t=125s\n", out.String())
}

func TestTab_SeekToNotVideo(t *testing.T) {
	tab := NewTab("https://example.com", nil, io.Discard)
	assert.ErrorIs(t, tab.SeekTo(context.Background(), 10), ErrNotVideo)
}
