package extractors

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/dtnitsch/llm-web-summarizer/pkg/stream"
)

const (
	// FallbackMarker starts the text built from description and comments.
	// Its presence means no transcript was found.
	FallbackMarker = "VIDEO DESCRIPTION:"

	maxComments      = 5
	maxCommentLength = 150
	titleSuffix      = " - YouTube"
)

var playerResponsePattern = regexp.MustCompile(`(?s)ytInitialPlayerResponse\s*=\s*({.+?});`)

var descriptionSelectors = []string{
	"#description-inline-expander",
	"#description",
	"ytd-video-secondary-info-renderer #description",
}

// Getter fetches the body of a URL.
type Getter interface {
	GetHtmlBytes(ctx context.Context, url string) ([]byte, error)
}

// YouTubeExtraction is the text taken from a watch page.
type YouTubeExtraction struct {
	Title         string `yaml:"title" json:"title"`
	Text          string `yaml:"text" json:"text"`
	HasTranscript bool   `yaml:"has_transcript" json:"has_transcript"`
}

// ExtractYouTube returns the transcript of the video on the page, fetched
// from the first caption track. When there is no caption track, or fetching
// it fails, the description and top comments are used instead.
func ExtractYouTube(ctx context.Context, doc *goquery.Document, get Getter) *YouTubeExtraction {
	player := findPlayerResponse(doc)

	text, err := fetchTranscript(ctx, player, get)
	if err != nil || player == "" {
		text = fallbackContent(doc, player)
	}

	return &YouTubeExtraction{
		Title:         VideoTitle(doc.Find("title").First().Text()),
		Text:          text,
		HasTranscript: !strings.Contains(text, FallbackMarker),
	}
}

// VideoTitle strips the site suffix from a watch page title.
func VideoTitle(title string) string {
	return strings.Replace(strings.TrimSpace(title), titleSuffix, "", 1)
}

// findPlayerResponse returns the ytInitialPlayerResponse JSON embedded in the
// page scripts, or "" when there is none.
func findPlayerResponse(doc *goquery.Document) string {
	var found string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.Text()
		if !strings.Contains(src, "ytInitialPlayerResponse") {
			return true
		}
		m := playerResponsePattern.FindStringSubmatchIndex(src)
		if m == nil {
			return true
		}
		if candidate := src[m[2]:m[3]]; gjson.Valid(candidate) {
			found = candidate
			return false
		}
		// The lazy match stops at the first "};", which may sit inside the
		// object. Brace-match from the same opening brace instead.
		frames, _ := stream.NewDecoder().Feed([]byte(src[m[2]:]))
		if len(frames) > 0 {
			found = frames[0].String()
			return false
		}
		return true
	})
	return found
}

func fetchTranscript(ctx context.Context, player string, get Getter) (string, error) {
	if player == "" {
		return "", fmt.Errorf("no player response on page")
	}
	baseURL := gjson.Get(player, "captions.playerCaptionsTracklistRenderer.captionTracks.0.baseUrl").String()
	if baseURL == "" {
		return "", fmt.Errorf("no caption tracks")
	}

	data, err := get.GetHtmlBytes(ctx, baseURL+"&fmt=json3")
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("transcript is not valid JSON")
	}
	return FormatTranscript(data), nil
}

// FormatTranscript renders json3 caption events as "[M:SS] text" lines.
func FormatTranscript(data []byte) string {
	var b strings.Builder
	gjson.GetBytes(data, "events").ForEach(func(_, event gjson.Result) bool {
		segs := event.Get("segs")
		if !segs.Exists() {
			return true
		}
		var text strings.Builder
		segs.ForEach(func(_, seg gjson.Result) bool {
			text.WriteString(seg.Get("utf8").String())
			return true
		})

		seconds := event.Get("tStartMs").Int() / 1000
		fmt.Fprintf(&b, "[%d:%02d] %s\n", seconds/60, seconds%60, text.String())
		return true
	})
	return b.String()
}

func fallbackContent(doc *goquery.Document, player string) string {
	var description string
	for _, sel := range descriptionSelectors {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			description = strings.TrimSpace(el.Text())
			break
		}
	}
	// Server-rendered pages carry the description in the player response
	// or the meta tags rather than the DOM.
	if description == "" && player != "" {
		description = gjson.Get(player, "videoDetails.shortDescription").String()
	}
	if description == "" {
		description, _ = doc.Find(`meta[name="description"]`).Attr("content")
	}

	var comments strings.Builder
	doc.Find("ytd-comment-thread-renderer").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxComments {
			return false
		}
		text := strings.TrimSpace(s.Find("#content-text").First().Text())
		if text != "" {
			fmt.Fprintf(&comments, "Comment %d: %s...\n", i+1, truncateRunes(text, maxCommentLength))
		}
		return true
	})

	return fmt.Sprintf("%s\n%s\n\nTOP COMMENTS:\n%s", FallbackMarker, description, comments.String())
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
