package models

// Actions understood by the content side.
const (
	ActionExtractContent = "extractContent"
	ActionSeekToTime     = "seekToTime"
)

// EventContentExtracted is broadcast to the background after a successful
// extraction.
const EventContentExtracted = "contentExtracted"

// Request is a message sent from the summarizer to the content side.
type Request struct {
	Action string `json:"action"`
	// Time is the seek offset in whole seconds, set for seekToTime only.
	Time int `json:"time,omitempty"`
}

// ExtractionResponse answers an extractContent request.
type ExtractionResponse struct {
	Success bool           `json:"success"`
	Content *ContentRecord `json:"content,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Event is a one-way notification from the content side to the background.
type Event struct {
	Type    string        `json:"type"`
	Content ContentRecord `json:"content"`
}
