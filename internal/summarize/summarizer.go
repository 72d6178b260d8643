// Package summarize drives one summary from extraction to the final render:
// Idle -> Extracting -> Prompting -> Streaming -> Finalizing -> Idle, or
// Failed from any step. Failed is left as soon as the error has been
// reported; the summarizer is then Idle again and LastError holds the cause.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dtnitsch/llm-web-summarizer/internal/observe"
	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/dtnitsch/llm-web-summarizer/pkg/analytics"
	"github.com/dtnitsch/llm-web-summarizer/pkg/export"
	"github.com/dtnitsch/llm-web-summarizer/pkg/gemini"
	"github.com/dtnitsch/llm-web-summarizer/pkg/prompt"
	"github.com/dtnitsch/llm-web-summarizer/pkg/render"
	"github.com/dtnitsch/llm-web-summarizer/pkg/stream"
	"github.com/dtnitsch/llm-web-summarizer/pkg/timestamps"
)

// DefaultChunkSize is the read size used on the response body.
const DefaultChunkSize = 4096

// Status messages shown while summarizing.
const (
	StatusExtracting = "Extracting content from page..."
	StatusGenerating = "Generating AI summary..."
	StatusDone       = "Summary generated successfully!"
)

// ErrBusy is returned when Summarize is called while another summary is
// still being generated.
var ErrBusy = errors.New("a summary is already being generated")

// ExtractionError reports that the page content could not be extracted.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

type State int

const (
	StateIdle State = iota
	StateExtracting
	StatePrompting
	StateStreaming
	StateFinalizing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StatePrompting:
		return "prompting"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StatusKind classifies a status message.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Messenger delivers requests to the page being summarized.
type Messenger interface {
	Send(ctx context.Context, req models.Request) (models.ExtractionResponse, error)
}

// Generator starts a streamed generation and returns the response body.
type Generator interface {
	StreamGenerate(ctx context.Context, prompt string) (io.ReadCloser, error)
}

// StatusReporter shows progress to the user.
type StatusReporter interface {
	ShowStatus(kind StatusKind, message string)
	ShowTokenInfo(info analytics.TokenInfo)
}

type nopReporter struct{}

func (nopReporter) ShowStatus(StatusKind, string)     {}
func (nopReporter) ShowTokenInfo(analytics.TokenInfo) {}

type Option func(*Summarizer)

// WithChunkSize sets how many bytes are read from the body at a time.
func WithChunkSize(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithStatusReporter sets where status messages go.
func WithStatusReporter(r StatusReporter) Option {
	return func(s *Summarizer) { s.status = r }
}

// WithSeeker sets what timestamp handlers seek.
func WithSeeker(seeker timestamps.Seeker) Option {
	return func(s *Summarizer) { s.seeker = seeker }
}

// WithMetrics replaces the default metrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Summarizer) { s.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Summarizer) { s.now = now }
}

// Summarizer runs at most one summary at a time. The renderer is owned by
// the running summary; nothing else may write to it while Summarize runs.
type Summarizer struct {
	messenger Messenger
	generator Generator
	renderer  *render.Renderer
	seeker    timestamps.Seeker
	status    StatusReporter
	metrics   *observe.Metrics
	logger    *slog.Logger
	chunkSize int
	now       func() time.Time

	mu       sync.Mutex
	active   bool
	state    State
	last     *models.SummaryResult
	lastErr  error
	handlers []timestamps.Handler
}

func New(messenger Messenger, generator Generator, renderer *render.Renderer, logger *slog.Logger, opts ...Option) *Summarizer {
	s := &Summarizer{
		messenger: messenger,
		generator: generator,
		renderer:  renderer,
		status:    nopReporter{},
		logger:    logger,
		chunkSize: DefaultChunkSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Summarize extracts the page, streams a summary of the requested length to
// the renderer and returns the finished result. For videos the final markup
// has its timestamps linked and TimestampHandlers is populated.
func (s *Summarizer) Summarize(ctx context.Context, length models.SummaryLength) (*models.SummaryResult, error) {
	if !s.begin() {
		return nil, ErrBusy
	}
	defer s.end()

	s.status.ShowStatus(StatusInfo, StatusExtracting)
	if err := s.renderer.Clear(); err != nil {
		s.logger.Warn("Failed to clear summary", "error", err)
	}

	content, err := s.extract(ctx)
	if err != nil {
		return nil, s.fail(ctx, observe.KindExtraction, err)
	}
	s.status.ShowTokenInfo(analytics.Measure(content.Text))
	s.status.ShowStatus(StatusInfo, StatusGenerating)

	s.setState(StatePrompting)
	p := prompt.Build(content, length)
	s.logger.Debug("Built prompt", "chars", len(p), "length", string(length), "type", content.Kind)

	s.setState(StateStreaming)
	started := s.now()
	body, err := s.generator.StreamGenerate(ctx, p)
	if err != nil {
		kind := observe.KindStream
		var reqErr *gemini.RequestError
		if errors.As(err, &reqErr) {
			kind = observe.KindRequest
		}
		return nil, s.fail(ctx, kind, err)
	}
	fullText, err := s.stream(ctx, body)
	_ = body.Close()
	s.metrics.StreamDuration.Record(ctx, s.now().Sub(started).Seconds())
	if err != nil {
		return nil, s.fail(ctx, observe.KindStream, err)
	}

	s.setState(StateFinalizing)
	result := &models.SummaryResult{
		FullText:    fullText,
		Content:     content,
		GeneratedAt: s.now(),
	}

	var handlers []timestamps.Handler
	if content.IsVideo() {
		linked := timestamps.Link(s.renderer.Markup())
		if err := s.renderer.Replace(linked); err != nil {
			s.logger.Warn("Failed to show timestamp links", "error", err)
		}
		if s.seeker != nil {
			handlers = timestamps.Bind(linked, s.seeker)
		}
	}

	s.mu.Lock()
	s.last = result
	s.handlers = handlers
	s.state = StateIdle
	s.mu.Unlock()

	s.metrics.RecordSummary(ctx, string(content.Kind))
	s.status.ShowStatus(StatusSuccess, StatusDone)
	s.logger.Info("Summary generated",
		"url", content.SourceURL,
		"chars", len(fullText),
		"timestamps", len(handlers),
	)
	return result, nil
}

func (s *Summarizer) extract(ctx context.Context) (models.ContentRecord, error) {
	resp, err := s.messenger.Send(ctx, models.Request{Action: models.ActionExtractContent})
	if err != nil {
		return models.ContentRecord{}, &ExtractionError{Message: err.Error(), Err: err}
	}
	if !resp.Success || resp.Content == nil {
		msg := resp.Error
		if msg == "" {
			msg = "Failed to extract content"
		}
		return models.ContentRecord{}, &ExtractionError{Message: msg}
	}
	return *resp.Content, nil
}

// stream reads body in order and renders every delta as it arrives. The
// streaming flag is cleared and a final render done however it returns.
func (s *Summarizer) stream(ctx context.Context, body io.Reader) (string, error) {
	dec := stream.NewDecoder()
	var full strings.Builder

	s.renderer.SetStreaming(true)
	defer func() {
		s.renderer.SetStreaming(false)
		if err := s.renderer.Render(); err != nil {
			s.logger.Warn("Final render failed", "error", err)
		}
	}()

	buf := make([]byte, s.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return full.String(), err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			frames, err := dec.Feed(buf[:n])
			if err != nil {
				s.metrics.FramesDropped.Add(ctx, int64(countErrors(err)))
				s.logger.Warn("Dropped malformed frames", "error", err)
			}
			s.metrics.FramesDecoded.Add(ctx, int64(len(frames)))

			for _, f := range frames {
				if msg := stream.ErrorMessage(f); msg != "" {
					s.logger.Warn("Error frame in stream", "message", msg)
				}
				if reason := stream.FinishReason(f); reason != "" {
					s.logger.Debug("Generation finished", "reason", reason)
				}
				delta := stream.ExtractDelta(f)
				full.WriteString(delta)
				if err := s.renderer.AppendText(delta); err != nil {
					return full.String(), fmt.Errorf("failed to render summary: %w", err)
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return full.String(), fmt.Errorf("failed to read response: %w", readErr)
		}
	}

	if n := dec.Close(); n > 0 {
		s.logger.Debug("Discarded unterminated stream tail", "bytes", n)
	}
	return full.String(), nil
}

func (s *Summarizer) fail(ctx context.Context, kind string, err error) error {
	s.mu.Lock()
	s.state = StateFailed
	s.lastErr = err
	s.mu.Unlock()

	s.metrics.RecordFailure(ctx, kind)
	s.status.ShowStatus(StatusError, "Error: "+err.Error())
	s.logger.Error("Summary generation failed", "kind", kind, "error", err)
	return err
}

func (s *Summarizer) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false
	}
	s.active = true
	s.state = StateExtracting
	s.lastErr = nil
	s.handlers = nil
	return true
}

func (s *Summarizer) end() {
	s.mu.Lock()
	s.active = false
	s.state = StateIdle
	s.mu.Unlock()
}

func (s *Summarizer) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns the current step.
func (s *Summarizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns why the most recent Summarize failed, or nil if it
// succeeded.
func (s *Summarizer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastResult returns the most recent finished summary, or nil.
func (s *Summarizer) LastResult() *models.SummaryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// TimestampHandlers returns the click handlers bound to the last video
// summary.
func (s *Summarizer) TimestampHandlers() []timestamps.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]timestamps.Handler(nil), s.handlers...)
}

// ExportPDF saves the last summary as a PDF report.
func (s *Summarizer) ExportPDF(e *export.Exporter) (string, error) {
	path, err := e.Export(s.LastResult())
	if err != nil {
		if errors.Is(err, export.ErrNoSummary) {
			s.status.ShowStatus(StatusError, export.ErrNoSummary.Error())
		} else {
			s.status.ShowStatus(StatusError, "PDF export failed.")
			s.logger.Error("PDF export failed", "error", err)
		}
		return "", err
	}
	s.status.ShowStatus(StatusSuccess, "PDF exported as "+filepath.Base(path))
	return path, nil
}

// countErrors counts the errors joined into err.
func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
