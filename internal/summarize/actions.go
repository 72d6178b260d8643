package summarize

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dtnitsch/llm-web-summarizer/internal/background"
	"github.com/dtnitsch/llm-web-summarizer/internal/common"
	"github.com/dtnitsch/llm-web-summarizer/internal/logging"
	"github.com/dtnitsch/llm-web-summarizer/internal/observe"
	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/dtnitsch/llm-web-summarizer/pkg/analytics"
	"github.com/dtnitsch/llm-web-summarizer/pkg/bridge"
	"github.com/dtnitsch/llm-web-summarizer/pkg/caching"
	"github.com/dtnitsch/llm-web-summarizer/pkg/db"
	"github.com/dtnitsch/llm-web-summarizer/pkg/export"
	"github.com/dtnitsch/llm-web-summarizer/pkg/extractor"
	"github.com/dtnitsch/llm-web-summarizer/pkg/fetcher"
	"github.com/dtnitsch/llm-web-summarizer/pkg/gemini"
	"github.com/dtnitsch/llm-web-summarizer/pkg/render"
	"github.com/dtnitsch/llm-web-summarizer/pkg/storage"
	"github.com/dtnitsch/llm-web-summarizer/pkg/timestamps"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Version is stored on first run; a new version starts from an empty store.
var Version = "dev"

// NewLogger builds the logger selected by the global flags.
func NewLogger(c *cli.Context) *slog.Logger {
	return logging.New(os.Stderr, logging.Options{
		Quiet:   c.Bool("quiet"),
		Verbose: c.Bool("verbose"),
		Console: c.Bool("log-console"),
	})
}

// LoadConfig reads the config file and applies flag overrides.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("length") {
		cfg.SummaryLength = models.SummaryLength(c.String("length"))
	}
	if c.IsSet("timeout") {
		cfg.RequestTimeout = c.Duration("timeout")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is the wiring shared by the commands that talk to a page: the
// store, the background service and a bus attached to one tab.
type session struct {
	store      *db.DB
	background *background.Service
	bus        *bridge.Bus
}

func openSession(ctx context.Context, cfg *models.Config, rawURL string, player io.Writer, logger *slog.Logger) (*session, error) {
	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	bg := background.New(store, nil, cfg.Eviction, logger)
	if _, err := bg.Install(ctx, Version); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to install: %w", err)
	}
	if err := bg.Start(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	f := fetcher.NewFetcher(nil)
	if cache, err := caching.NewCache(cfg.CachePath(), cfg.CacheTTL); err != nil {
		logger.Warn("Page cache disabled", "error", err)
	} else {
		if n, err := cache.Prune(); err != nil {
			logger.Warn("Failed to prune page cache", "error", err)
		} else if n > 0 {
			logger.Debug("Pruned page cache", "removed", n)
		}
		f.WithCache(cache)
	}

	bus := bridge.NewBus(logger)
	bus.Subscribe(bg.HandleEvent)
	bus.Attach(extractor.NewTab(rawURL, extractor.New(f, logger), player))

	return &session{store: store, background: bg, bus: bus}, nil
}

func (s *session) Close() {
	s.background.Stop()
	_ = s.store.Close()
}

func urlArg(c *cli.Context) (string, error) {
	raw := c.String("url")
	if raw == "" {
		raw = c.Args().First()
	}
	if raw == "" {
		return "", errors.New("a URL is required (--url or first argument)")
	}
	return common.ValidateURL(raw)
}

func SummarizeAction(c *cli.Context) error {
	logger := NewLogger(c)

	rawURL, err := urlArg(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	provider := observe.InitProvider()
	shutdownMetrics := func() {
		if err := provider.Shutdown(context.Background(), logger); err != nil {
			logger.Warn("failed to shut down metrics", "error", err)
		}
	}
	defer shutdownMetrics()

	cfg, err := LoadConfig(c)
	if err != nil {
		configFailed(c.Context, observe.DefaultMetrics(), logger, err)
		shutdownMetrics()
		os.Exit(2)
	}

	client, err := gemini.NewClient(gemini.Config{
		APIKey:          cfg.APIKey,
		Model:           cfg.Model,
		Endpoint:        cfg.Endpoint,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Timeout:         cfg.RequestTimeout,
	}, nil)
	if err != nil {
		configFailed(c.Context, observe.DefaultMetrics(), logger, err)
		shutdownMetrics()
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		os.Exit(2)
	}

	files, err := storage.New(cfg.OutputDir)
	if err != nil {
		logger.Error("failed to initialize output directory", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, cfg, rawURL, os.Stdout, logger)
	if err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(2)
	}
	defer sess.Close()

	sinks := render.MultiSink{render.NewTerminalSink(os.Stdout)}
	if name := c.String("html-out"); name != "" {
		sinks = append(sinks, render.NewHTMLFileSink(files, name, "AI Summary"))
		logger.Info("Following summary in browser", "path", files.Path(name))
	}

	s := New(sess.bus, client, render.New(sinks), logger,
		WithStatusReporter(NewWriterReporter(os.Stderr, c.Bool("quiet"))),
		WithSeeker(sess.bus),
	)

	result, err := s.Summarize(ctx, cfg.SummaryLength)
	if err != nil {
		return cli.Exit("", 1)
	}

	if c.Bool("pdf") {
		path, err := s.ExportPDF(export.NewExporter(files))
		if err != nil {
			return cli.Exit("", 1)
		}
		logExport(logger, files, path)
	}

	if c.Bool("interactive") && result.Content.IsVideo() {
		return promptTimestamps(ctx, os.Stdin, os.Stderr, s.TimestampHandlers())
	}
	return nil
}

// configFailed counts a summary that never started because the
// configuration was unusable.
func configFailed(ctx context.Context, m *observe.Metrics, logger *slog.Logger, err error) {
	m.RecordFailure(ctx, observe.KindConfig)
	logger.Error("invalid configuration", "error", err)
}

// logExport records where an exported file landed and how large it is.
func logExport(logger *slog.Logger, files *storage.Storage, path string) {
	stats, err := files.GetFileStats(filepath.Base(path))
	if err != nil {
		logger.Warn("Exported file not found", "path", path, "error", err)
		return
	}
	logger.Info("Exported PDF",
		"path", path,
		"bytes", stats.SizeBytes,
		"modified", stats.ModTime.Format(time.RFC3339),
	)
}

// promptTimestamps lists handlers and clicks the one picked by number until
// the input ends or the user enters q.
func promptTimestamps(ctx context.Context, in io.Reader, out io.Writer, handlers []timestamps.Handler) error {
	if len(handlers) == 0 {
		return nil
	}

	fmt.Fprintln(out, "\nTimestamps:")
	for i, h := range handlers {
		fmt.Fprintf(out, "  %d) %s\n", i+1, h.Token)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Jump to (number, q to quit): ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "q" {
			return nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(handlers) {
			fmt.Fprintf(out, "Pick a number between 1 and %d\n", len(handlers))
			continue
		}
		if err := handlers[n-1].Click(ctx); err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}

// ExtractOutput is what the extract command prints.
type ExtractOutput struct {
	Type          string `yaml:"type"`
	URL           string `yaml:"url"`
	Title         string `yaml:"title,omitempty"`
	Language      string `yaml:"language,omitempty"`
	HasTranscript bool   `yaml:"has_transcript,omitempty"`
	Words         int    `yaml:"words"`
	Tokens        int    `yaml:"estimated_tokens"`
	Content       string `yaml:"content,omitempty"`
}

func newExtractOutput(record models.ContentRecord, withContent bool) ExtractOutput {
	info := analytics.Measure(record.Text)
	out := ExtractOutput{
		Type:          string(record.Kind),
		URL:           record.SourceURL,
		Title:         record.Title,
		Language:      record.Language,
		HasTranscript: record.HasTranscript,
		Words:         info.Words,
		Tokens:        info.Tokens,
	}
	if withContent {
		out.Content = record.Text
	}
	return out
}

// ExtractAction extracts the page and prints the record as YAML. The record
// is stored like any other extraction.
func ExtractAction(c *cli.Context) error {
	logger := NewLogger(c)

	rawURL, err := urlArg(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	cfg, err := LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, cfg, rawURL, os.Stdout, logger)
	if err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(2)
	}
	defer sess.Close()

	resp, err := sess.bus.Send(ctx, models.Request{Action: models.ActionExtractContent})
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}
	if !resp.Success || resp.Content == nil {
		return cli.Exit("Error: "+resp.Error, 1)
	}

	data, err := yaml.Marshal(newExtractOutput(*resp.Content, !c.Bool("summary-only")))
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// SeekAction prints the link that opens a video at the given offset.
func SeekAction(c *cli.Context) error {
	logger := NewLogger(c)

	rawURL, err := urlArg(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	seconds, err := ParseSeekTime(c.String("time"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	bus := bridge.NewBus(logger)
	bus.Attach(extractor.NewTab(rawURL, nil, os.Stdout))
	if err := bus.SeekTo(c.Context, seconds); err != nil {
		return cli.Exit("Error: "+err.Error(), 1)
	}
	return nil
}

// ParseSeekTime accepts plain seconds ("125") or a timestamp ("2:05").
func ParseSeekTime(s string) (int, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if mins, secs, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(mins)
		if err != nil || m < 0 {
			return 0, fmt.Errorf("invalid minutes in %q", s)
		}
		sec, err := strconv.Atoi(secs)
		if err != nil || len(secs) != 2 || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid seconds in %q", s)
		}
		return timestamps.Token{Minutes: m, Seconds: sec}.TotalSeconds(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return n, nil
}
