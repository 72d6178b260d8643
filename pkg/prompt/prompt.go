// Package prompt builds the summarization prompt for a content record.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/llm-web-summarizer/models"
)

// MaxContentChars bounds the content embedded in the prompt.
const MaxContentChars = 50000

const (
	timestampDirective = "Include relevant timestamps from the transcript in format [MM:SS].\n"
	fallbackDisclosure = "Note: No transcript was found. This summary is based on video description and comments.\n"
	comprehensive      = "Provide a comprehensive, detailed summary with sections.\n"
)

// Build assembles the prompt: the truncated content, a length directive and,
// for videos, either a timestamp instruction (transcript present) or a
// disclosure that only fallback metadata was available.
func Build(c models.ContentRecord, length models.SummaryLength) string {
	var b strings.Builder

	subject := "web page"
	if c.IsVideo() {
		subject = "YouTube video content"
	}
	fmt.Fprintf(&b, "Please summarize the following %s:\n\n", subject)
	fmt.Fprintf(&b, "\"%s\"\n\n", Truncate(c.Text, MaxContentChars))

	if n := length.BulletCount(); n > 0 {
		fmt.Fprintf(&b, "Provide the summary in exactly %d bullet points.\n", n)
	} else {
		b.WriteString(comprehensive)
	}

	if c.IsVideo() {
		if c.HasTranscript {
			b.WriteString(timestampDirective)
		} else {
			b.WriteString(fallbackDisclosure)
		}
	}

	if c.Language != "" && c.Language != "English" {
		fmt.Fprintf(&b, "Write the summary in %s.\n", c.Language)
	}

	return b.String()
}

// Truncate returns at most limit characters of s, never splitting a rune.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
