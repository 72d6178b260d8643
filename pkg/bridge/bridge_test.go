package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/dtnitsch/llm-web-summarizer/pkg/timestamps"
)

type fakeScript struct {
	content models.ContentRecord
	err     error
	seeks   []int
	seekErr error
}

func (f *fakeScript) ExtractContent(context.Context) (models.ContentRecord, error) {
	return f.content, f.err
}

func (f *fakeScript) SeekTo(_ context.Context, seconds int) error {
	f.seeks = append(f.seeks, seconds)
	return f.seekErr
}

func newBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSend_NoReceiver(t *testing.T) {
	_, err := newBus().Send(context.Background(), models.Request{Action: models.ActionExtractContent})
	assert.ErrorIs(t, err, ErrNoReceiver)
}

func TestSend_ExtractSuccessEmitsEvent(t *testing.T) {
	bus := newBus()
	content := models.ContentRecord{Kind: models.ContentKindWebpage, Text: "body", SourceURL: "https://example.com"}
	bus.Attach(&fakeScript{content: content})

	var events []models.Event
	bus.Subscribe(func(_ context.Context, ev models.Event) { events = append(events, ev) })

	resp, err := bus.Send(context.Background(), models.Request{Action: models.ActionExtractContent})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Content)
	assert.Equal(t, content, *resp.Content)

	require.Len(t, events, 1)
	assert.Equal(t, models.EventContentExtracted, events[0].Type)
	assert.Equal(t, content, events[0].Content)
}

func TestSend_ExtractFailure(t *testing.T) {
	bus := newBus()
	bus.Attach(&fakeScript{err: errors.New("page blocked")})

	called := false
	bus.Subscribe(func(context.Context, models.Event) { called = true })

	resp, err := bus.Send(context.Background(), models.Request{Action: models.ActionExtractContent})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "page blocked", resp.Error)
	assert.Nil(t, resp.Content)
	assert.False(t, called, "no event on failure")
}

func TestSend_UnknownAction(t *testing.T) {
	bus := newBus()
	bus.Attach(&fakeScript{})

	_, err := bus.Send(context.Background(), models.Request{Action: "reload"})
	assert.Error(t, err)
}

func TestSeekTo_BacksTimestampHandlers(t *testing.T) {
	bus := newBus()
	script := &fakeScript{}
	bus.Attach(script)

	handlers := timestamps.Bind(timestamps.Link("[2:05] point"), bus)
	require.Len(t, handlers, 1)
	require.NoError(t, handlers[0].Click(context.Background()))

	assert.Equal(t, []int{125}, script.seeks)
}

func TestSeekTo_Failure(t *testing.T) {
	bus := newBus()
	bus.Attach(&fakeScript{seekErr: errors.New("no video")})

	err := bus.SeekTo(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, "no video", err.Error())
}
