// Package render owns the displayed summary while it streams in.
package render

import (
	"strings"

	"github.com/dtnitsch/llm-web-summarizer/pkg/formatter"
)

const (
	// Cursor is appended to the markup while more deltas are expected.
	Cursor = `<span class="streaming-cursor">▌</span>`
	// Placeholder is shown after Clear.
	Placeholder = `<p class="placeholder">Your summary will appear here...</p>`

	contentOpen  = `<div class="summary-content">`
	contentClose = `</div>`
)

// Sink is a display surface. Show replaces everything previously shown.
type Sink interface {
	Show(markup string) error
	ScrollToEnd()
}

// Renderer keeps the accumulated summary text and the streaming flag and
// redraws the sink from scratch on every change.
//
// A Renderer has a single writer, the summarizer's streaming loop, and is
// not safe for concurrent use.
type Renderer struct {
	sink      Sink
	text      strings.Builder
	streaming bool
	markup    string
}

// New returns a renderer drawing to sink.
func New(sink Sink) *Renderer {
	return &Renderer{sink: sink}
}

// AppendText adds delta to the accumulated text and redraws.
func (r *Renderer) AppendText(delta string) error {
	r.text.WriteString(delta)
	return r.Render()
}

// Render recomputes the full markup from the accumulated text. The cursor is
// included only while streaming. Calling Render twice without a change in
// between shows the same markup twice.
func (r *Renderer) Render() error {
	var b strings.Builder
	b.WriteString(contentOpen)
	b.WriteString(formatter.Format(r.text.String()))
	if r.streaming {
		b.WriteString(Cursor)
	}
	b.WriteString(contentClose)

	return r.show(b.String())
}

// Replace shows markup produced outside the formatter, such as the final
// summary with timestamp links. The next Render overwrites it.
func (r *Renderer) Replace(markup string) error {
	return r.show(markup)
}

func (r *Renderer) show(markup string) error {
	r.markup = markup
	if err := r.sink.Show(markup); err != nil {
		return err
	}
	r.sink.ScrollToEnd()
	return nil
}

// Clear drops the accumulated text and shows the placeholder.
func (r *Renderer) Clear() error {
	r.text.Reset()
	r.markup = Placeholder
	return r.sink.Show(Placeholder)
}

// SetStreaming toggles the cursor. It does not redraw.
func (r *Renderer) SetStreaming(streaming bool) {
	r.streaming = streaming
}

// Streaming reports whether more deltas are expected.
func (r *Renderer) Streaming() bool {
	return r.streaming
}

// Text returns the accumulated text.
func (r *Renderer) Text() string {
	return r.text.String()
}

// Markup returns what was last shown on the sink.
func (r *Renderer) Markup() string {
	return r.markup
}
