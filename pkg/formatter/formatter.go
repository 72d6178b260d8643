// Package formatter turns the markdown-like text produced by the model into
// display markup.
package formatter

import (
	"regexp"
	"strings"
)

var (
	boldPattern     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern   = regexp.MustCompile(`\*(.*?)\*`)
	bulletPattern   = regexp.MustCompile(`(?m)^•\s+(.*)$`)
	heading3Pattern = regexp.MustCompile(`(?m)^#\s+(.*)$`)
	heading4Pattern = regexp.MustCompile(`(?m)^##\s+(.*)$`)
)

// Format converts text to markup. Rules run in a fixed order and each one
// sees the output of the previous one: bold, italic, bullet lines, headings,
// then newlines. When any list item was produced the whole result is wrapped
// in a single <ul> and line breaks are dropped, since <li> is already a block.
func Format(text string) string {
	if text == "" {
		return ""
	}

	html := boldPattern.ReplaceAllString(text, "<strong>${1}</strong>")
	html = italicPattern.ReplaceAllString(html, "<em>${1}</em>")
	html = bulletPattern.ReplaceAllString(html, "<li>${1}</li>")
	html = heading3Pattern.ReplaceAllString(html, "<h3>${1}</h3>")
	html = heading4Pattern.ReplaceAllString(html, "<h4>${1}</h4>")
	html = strings.ReplaceAll(html, "\n", "<br>")

	if strings.Contains(html, "<li>") {
		html = "<ul>" + strings.ReplaceAll(html, "<br>", "") + "</ul>"
	}

	return html
}
