package render

import (
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mattn/go-isatty"
)

// MemorySink keeps every markup it was shown. It is the headless display
// used by tests and by runs without an interactive output.
type MemorySink struct {
	Markups []string
	Scrolls int
}

func (m *MemorySink) Show(markup string) error {
	m.Markups = append(m.Markups, markup)
	return nil
}

func (m *MemorySink) ScrollToEnd() {
	m.Scrolls++
}

// Last returns the most recent markup, "" when nothing was shown.
func (m *MemorySink) Last() string {
	if len(m.Markups) == 0 {
		return ""
	}
	return m.Markups[len(m.Markups)-1]
}

// FileWriter replaces a named file atomically. *storage.Storage satisfies it.
type FileWriter interface {
	ReplaceFile(name string, content []byte) (string, error)
}

// HTMLFileSink rewrites a standalone HTML page on every Show, so a browser
// pointed at the file (with auto-reload) follows the stream.
type HTMLFileSink struct {
	files FileWriter
	name  string
	title string
}

// NewHTMLFileSink returns a sink writing name through files.
func NewHTMLFileSink(files FileWriter, name, title string) *HTMLFileSink {
	return &HTMLFileSink{files: files, name: name, title: title}
}

func (h *HTMLFileSink) Show(markup string) error {
	page := fmt.Sprintf(htmlPage, html.EscapeString(h.title), markup)
	if _, err := h.files.ReplaceFile(h.name, []byte(page)); err != nil {
		return fmt.Errorf("failed to write %s: %w", h.name, err)
	}
	return nil
}

// ScrollToEnd is handled by the page script.
func (h *HTMLFileSink) ScrollToEnd() {}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.streaming-cursor { animation: blink 1s step-start infinite; }
.timestamp { color: #065fd4; cursor: pointer; }
.placeholder { color: #888; }
@keyframes blink { 50%% { opacity: 0; } }
</style>
</head>
<body>
<div id="summary-output">%s</div>
<script>window.scrollTo(0, document.body.scrollHeight);</script>
</body>
</html>
`

// TerminalSink prints the summary as markdown. While the converted text only
// grows it prints the new suffix; when earlier text changes (a bold marker
// closing, a line becoming a list item) it redraws the screen on a terminal,
// or holds output until the final render otherwise.
type TerminalSink struct {
	w       io.Writer
	redraw  bool
	printed string
	// ended is set once the final render has written its closing newline.
	ended bool
}

// NewTerminalSink returns a sink writing to w. Redrawing is enabled when w is
// a terminal.
func NewTerminalSink(w io.Writer) *TerminalSink {
	redraw := false
	if f, ok := w.(*os.File); ok {
		redraw = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &TerminalSink{w: w, redraw: redraw}
}

func (t *TerminalSink) Show(markup string) error {
	if markup == Placeholder {
		t.printed = ""
		t.ended = false
		return nil
	}

	final := !strings.Contains(markup, Cursor)
	text, err := htmltomarkdown.ConvertString(strings.Replace(markup, Cursor, "", 1))
	if err != nil {
		return fmt.Errorf("failed to convert summary markup: %w", err)
	}

	if text == t.printed {
		if final && !t.ended {
			if _, err := io.WriteString(t.w, "\n"); err != nil {
				return fmt.Errorf("failed to write to terminal: %w", err)
			}
			t.ended = true
		}
		return nil
	}

	switch {
	case strings.HasPrefix(text, t.printed):
		_, err = io.WriteString(t.w, text[len(t.printed):])
	case t.redraw:
		_, err = io.WriteString(t.w, "\x1b[H\x1b[2J"+text)
	case final:
		_, err = io.WriteString(t.w, "\n\n"+text)
	default:
		return nil
	}
	if err == nil && final {
		_, err = io.WriteString(t.w, "\n")
	}
	if err != nil {
		return fmt.Errorf("failed to write to terminal: %w", err)
	}
	t.printed = text
	t.ended = final
	return nil
}

// ScrollToEnd is a no-op; terminals follow the output.
func (t *TerminalSink) ScrollToEnd() {}

// MultiSink shows the same markup on several sinks. The first error stops
// the fan-out.
type MultiSink []Sink

func (m MultiSink) Show(markup string) error {
	for _, s := range m {
		if err := s.Show(markup); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) ScrollToEnd() {
	for _, s := range m {
		s.ScrollToEnd()
	}
}
