// Package stream reassembles JSON objects from a chunked response body and
// pulls text deltas out of them.
//
// The generation endpoint streams a JSON array of response objects, but the
// array is never parsed as a whole. Instead the Decoder finds each balanced
// {...} object in the bytes seen so far and yields it as soon as its closing
// brace arrives, whatever the chunk boundaries look like.
package stream

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Frame is one complete JSON object cut out of the stream.
type Frame []byte

func (f Frame) String() string {
	return string(f)
}

// FrameParseError reports a brace-balanced slice that is not valid JSON.
// The frame is dropped; decoding continues after it.
type FrameParseError struct {
	Frame string
}

func (e *FrameParseError) Error() string {
	preview := e.Frame
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return fmt.Sprintf("invalid JSON frame: %q", preview)
}

// Decoder is an incremental brace matcher.
//
// buf holds only the part of the response not yet consumed into frames.
// start is the index of the '{' that opens the frame being matched (-1 while
// no '{' has been seen), pos is the next byte to scan and depth the brace
// depth reached at pos. Keeping pos and depth across Feed calls means a long
// frame is not rescanned from its start on every chunk.
//
// A Decoder is not safe for concurrent use; chunks must be fed in order.
type Decoder struct {
	buf   []byte
	start int
	pos   int
	depth int
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{start: -1}
}

// Feed appends chunk to the buffer and returns every frame completed by it,
// in stream order. A chunk may complete zero, one or many frames.
//
// Frames that fail to parse are left out of the result and reported as a
// joined error of *FrameParseError values. A non-nil error therefore never
// means the stream is broken; the returned frames are still good.
func (d *Decoder) Feed(chunk []byte) ([]Frame, error) {
	d.buf = append(d.buf, chunk...)

	var (
		frames []Frame
		errs   []error
	)
	for {
		frame, ok := d.next()
		if !ok {
			break
		}
		if !gjson.ValidBytes(frame) {
			errs = append(errs, &FrameParseError{Frame: string(frame)})
			continue
		}
		frames = append(frames, frame)
	}

	return frames, errors.Join(errs...)
}

// next cuts the next balanced object out of the buffer, if there is one.
func (d *Decoder) next() (Frame, bool) {
	if d.start < 0 {
		i := bytes.IndexByte(d.buf[d.pos:], '{')
		if i < 0 {
			// Nothing to match yet. Leading bytes stay buffered.
			d.pos = len(d.buf)
			return nil, false
		}
		d.start = d.pos + i
		d.pos = d.start
		d.depth = 0
	}

	end := -1
	for d.pos < len(d.buf) {
		switch d.buf[d.pos] {
		case '{':
			d.depth++
		case '}':
			d.depth--
		}
		if d.depth == 0 {
			end = d.pos
			break
		}
		d.pos++
	}
	if end < 0 {
		return nil, false
	}

	frame := make(Frame, end+1-d.start)
	copy(frame, d.buf[d.start:end+1])

	d.buf = append(d.buf[:0], d.buf[end+1:]...)
	d.start = -1
	d.pos = 0
	d.depth = 0

	return frame, true
}

// Buffered reports how many bytes are waiting for a closing brace.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Close discards any unterminated trailing fragment and returns its size.
// A trailing fragment is expected when the upstream ends mid-object and is
// not an error.
func (d *Decoder) Close() int {
	n := len(d.buf)
	d.buf = nil
	d.start = -1
	d.pos = 0
	d.depth = 0
	return n
}
