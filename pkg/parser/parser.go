package parser

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// MaxWords caps the text handed to the summarizer.
const MaxWords = 20000

// unwantedSelectors are stripped from the page before text is taken when
// readability cannot find a main article.
var unwantedSelectors = []string{
	"nav", "footer", "header", "aside", "script",
	"style", "iframe", ".ad", ".advertisement",
	".navbar", ".menu", ".sidebar", ".social-share",
	".comments", ".related-posts", ".newsletter",
}

// Article is the readable text of a web page.
type Article struct {
	Title string
	Text  string
}

type Parser struct{}

// ExtractText uses go-readability to find the main content of html. When
// readability fails or finds nothing, the whole body is used after removing
// navigation, ads and similar chrome. Whitespace is collapsed and the result
// is limited to MaxWords words.
func (p *Parser) ExtractText(rawURL, html string) (*Article, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	var title, text string
	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(html), parsedURL)
	if err == nil {
		title = normalizeText(article.Title)
		text = article.TextContent
	}

	if strings.TrimSpace(text) == "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		text = CleanBodyText(doc)
		if title == "" {
			title = normalizeText(doc.Find("title").First().Text())
		}
	}

	return &Article{
		Title: title,
		Text:  LimitWords(text, MaxWords),
	}, nil
}

// CleanBodyText returns the text of the document body with unwanted
// elements removed. The document is modified.
func CleanBodyText(doc *goquery.Document) string {
	body := doc.Find("body")
	for _, sel := range unwantedSelectors {
		body.Find(sel).Remove()
	}
	return body.Text()
}

// LimitWords collapses runs of whitespace to single spaces and keeps at most
// limit words.
func LimitWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) > limit {
		words = words[:limit]
	}
	return strings.Join(words, " ")
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
