package models

import "time"

// ContentKind tells web pages and videos apart.
type ContentKind string

const (
	ContentKindWebpage ContentKind = "webpage"
	ContentKindVideo   ContentKind = "video"
)

// ContentRecord is the normalized text extracted from one page, plus the
// metadata the summarizer needs. It is produced once per extraction and
// never modified afterwards.
type ContentRecord struct {
	Kind      ContentKind `json:"type" yaml:"type"`
	Text      string      `json:"content" yaml:"content"`
	SourceURL string      `json:"url" yaml:"url"`
	Title     string      `json:"title" yaml:"title"`

	// HasTranscript is only meaningful for videos. False means Text holds
	// the description/comments fallback instead of captions.
	HasTranscript bool `json:"hasTranscript,omitempty" yaml:"has_transcript,omitempty"`

	// Language is the detected language name (e.g. "English"), empty when
	// detection was not confident.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// IsVideo reports whether the record came from a video page.
func (c ContentRecord) IsVideo() bool {
	return c.Kind == ContentKindVideo
}

// SummaryResult is a finished summary and the content it was generated from.
type SummaryResult struct {
	FullText    string        `json:"summary" yaml:"summary"`
	Content     ContentRecord `json:"content" yaml:"content"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
}
