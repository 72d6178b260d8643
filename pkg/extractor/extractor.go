// Package extractor turns a URL into a ContentRecord. It is the content side
// of the message bridge: web pages go through readability, YouTube watch
// pages through the transcript extractor.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/dtnitsch/llm-web-summarizer/pkg/detector"
	"github.com/dtnitsch/llm-web-summarizer/pkg/extractors"
	"github.com/dtnitsch/llm-web-summarizer/pkg/fetcher"
	"github.com/dtnitsch/llm-web-summarizer/pkg/parser"
)

// ErrNotVideo is returned when seeking on a page that has no video.
var ErrNotVideo = errors.New("page is not a video")

type Extractor struct {
	fetcher *fetcher.Fetcher
	parser  *parser.Parser
	logger  *slog.Logger
}

func New(f *fetcher.Fetcher, logger *slog.Logger) *Extractor {
	return &Extractor{
		fetcher: f,
		parser:  &parser.Parser{},
		logger:  logger,
	}
}

// Extract fetches rawURL and returns its normalized content.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (models.ContentRecord, error) {
	var record models.ContentRecord

	if detector.IsYouTube(rawURL) {
		doc, err := e.fetcher.GetHtml(ctx, rawURL)
		if err != nil {
			return record, err
		}
		yt := extractors.ExtractYouTube(ctx, doc, e.fetcher)
		record = models.ContentRecord{
			Kind:          models.ContentKindVideo,
			Text:          yt.Text,
			SourceURL:     rawURL,
			Title:         yt.Title,
			HasTranscript: yt.HasTranscript,
		}
	} else {
		html, err := e.fetcher.GetHtmlBytes(ctx, rawURL)
		if err != nil {
			return record, err
		}
		article, err := e.parser.ExtractText(rawURL, string(html))
		if err != nil {
			return record, fmt.Errorf("failed to extract text: %w", err)
		}
		record = models.ContentRecord{
			Kind:      models.ContentKindWebpage,
			Text:      article.Text,
			SourceURL: rawURL,
			Title:     article.Title,
		}
	}

	record.Language = detector.Language(record.Text)

	e.logger.Debug("Extracted content",
		"url", rawURL,
		"type", record.Kind,
		"chars", len(record.Text),
		"has_transcript", record.HasTranscript,
		"language", record.Language,
	)
	return record, nil
}

// Tab is the page currently open: the URL being summarized and the player
// that timestamp clicks seek.
type Tab struct {
	URL       string
	extractor *Extractor
	player    io.Writer
}

// NewTab returns a tab showing rawURL. Seeks are written to player as watch
// links.
func NewTab(rawURL string, e *Extractor, player io.Writer) *Tab {
	return &Tab{URL: rawURL, extractor: e, player: player}
}

func (t *Tab) ExtractContent(ctx context.Context) (models.ContentRecord, error) {
	return t.extractor.Extract(ctx, t.URL)
}

// SeekTo moves the player to seconds. There is no embedded player, so the
// seek is shown as a link that opens the video at that offset.
func (t *Tab) SeekTo(_ context.Context, seconds int) error {
	if !detector.IsYouTube(t.URL) {
		return ErrNotVideo
	}
	id := detector.VideoID(t.URL)
	if id == "" {
		return fmt.Errorf("no video id in %s", t.URL)
	}
	if _, err := fmt.Fprintf(t.player, "▶ %s\n", detector.WatchURL(id, seconds)); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}
