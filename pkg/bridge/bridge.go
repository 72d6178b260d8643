// Package bridge carries requests from the summarizer to the page it is
// summarizing, and broadcasts extraction events to the background.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dtnitsch/llm-web-summarizer/models"
)

// ErrNoReceiver is returned when no content script is attached.
var ErrNoReceiver = errors.New("Could not establish connection. Receiving end does not exist.")

// ContentScript is the page-side receiver of requests.
type ContentScript interface {
	ExtractContent(ctx context.Context) (models.ContentRecord, error)
	SeekTo(ctx context.Context, seconds int) error
}

// Listener receives events broadcast by the content side.
type Listener func(ctx context.Context, ev models.Event)

// Bus routes Requests to the attached ContentScript. Listeners are called
// synchronously, in subscription order, before Send returns.
type Bus struct {
	logger *slog.Logger

	mu        sync.RWMutex
	receiver  ContentScript
	listeners []Listener
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Attach makes cs the receiver of subsequent requests. A nil cs detaches.
func (b *Bus) Attach(cs ContentScript) {
	b.mu.Lock()
	b.receiver = cs
	b.mu.Unlock()
}

// Subscribe registers l for content side events.
func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Send delivers req to the content script. Extraction failures come back as
// a response with Success false; the error return is reserved for transport
// problems such as a missing receiver or an unknown action.
func (b *Bus) Send(ctx context.Context, req models.Request) (models.ExtractionResponse, error) {
	b.mu.RLock()
	receiver := b.receiver
	b.mu.RUnlock()

	if receiver == nil {
		return models.ExtractionResponse{}, ErrNoReceiver
	}

	switch req.Action {
	case models.ActionExtractContent:
		content, err := receiver.ExtractContent(ctx)
		if err != nil {
			return models.ExtractionResponse{Success: false, Error: err.Error()}, nil
		}
		b.emit(ctx, models.Event{Type: models.EventContentExtracted, Content: content})
		return models.ExtractionResponse{Success: true, Content: &content}, nil

	case models.ActionSeekToTime:
		// Seeks are fire and forget.
		if err := receiver.SeekTo(ctx, req.Time); err != nil {
			b.logger.Warn("Seek failed", "time", req.Time, "error", err)
			return models.ExtractionResponse{Success: false, Error: err.Error()}, nil
		}
		return models.ExtractionResponse{Success: true}, nil

	default:
		return models.ExtractionResponse{}, fmt.Errorf("unknown action %q", req.Action)
	}
}

// SeekTo sends a seekToTime request, so the bus can back timestamp handlers.
func (b *Bus) SeekTo(ctx context.Context, seconds int) error {
	resp, err := b.Send(ctx, models.Request{Action: models.ActionSeekToTime, Time: seconds})
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}
	return nil
}

func (b *Bus) emit(ctx context.Context, ev models.Event) {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners...)
	b.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, ev)
	}
}
