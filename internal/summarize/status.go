package summarize

import (
	"fmt"
	"io"
	"sync"

	"github.com/dtnitsch/llm-web-summarizer/pkg/analytics"
)

// WriterReporter prints status lines to w. Quiet drops everything but errors.
type WriterReporter struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

func NewWriterReporter(w io.Writer, quiet bool) *WriterReporter {
	return &WriterReporter{w: w, quiet: quiet}
}

func (r *WriterReporter) ShowStatus(kind StatusKind, message string) {
	if r.quiet && kind != StatusError {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s %s\n", statusIcon(kind), message)
}

func (r *WriterReporter) ShowTokenInfo(info analytics.TokenInfo) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, info.String())
}

func statusIcon(kind StatusKind) string {
	switch kind {
	case StatusSuccess:
		return "✓"
	case StatusError:
		return "✗"
	default:
		return "•"
	}
}
