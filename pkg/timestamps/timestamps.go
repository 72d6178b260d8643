// Package timestamps turns [M:SS] references in a video summary into
// clickable elements and maps clicks back to seek offsets.
package timestamps

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

var (
	tokenPattern = regexp.MustCompile(`\[(\d{1,2}):(\d{2})\]`)
	linkPattern  = regexp.MustCompile(`<span class="timestamp" data-minutes="(\d+)" data-seconds="(\d+)">`)
)

// Token is one [M:SS] reference.
type Token struct {
	Minutes int
	Seconds int
}

// TotalSeconds returns the offset from the start of the video.
func (t Token) TotalSeconds() int {
	return t.Minutes*60 + t.Seconds
}

func (t Token) String() string {
	return fmt.Sprintf("[%d:%02d]", t.Minutes, t.Seconds)
}

// Link rewrites every [M:SS] in markup into a timestamp span carrying its
// minute and second values. References with seconds above 59 are not valid
// offsets and are left as text. Link must run once on freshly rendered
// markup; the spans it produces contain the reference again.
func Link(markup string) string {
	return tokenPattern.ReplaceAllStringFunc(markup, func(m string) string {
		sub := tokenPattern.FindStringSubmatch(m)
		secs, _ := strconv.Atoi(sub[2])
		if secs > 59 {
			return m
		}
		return fmt.Sprintf(`<span class="timestamp" data-minutes="%s" data-seconds="%s">%s</span>`, sub[1], sub[2], m)
	})
}

// Scan returns the tokens of every timestamp span in markup, in order.
func Scan(markup string) []Token {
	matches := linkPattern.FindAllStringSubmatch(markup, -1)
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		mins, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		secs, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		tokens = append(tokens, Token{Minutes: mins, Seconds: secs})
	}
	return tokens
}

// Seeker moves playback of the current video.
type Seeker interface {
	SeekTo(ctx context.Context, seconds int) error
}

// Handler is the click action bound to one timestamp element.
type Handler struct {
	Token  Token
	seeker Seeker
}

// Click asks the seeker to jump to the token's offset.
func (h Handler) Click(ctx context.Context) error {
	return h.seeker.SeekTo(ctx, h.Token.TotalSeconds())
}

// Bind attaches a click handler to every timestamp element in markup.
func Bind(markup string, seeker Seeker) []Handler {
	tokens := Scan(markup)
	handlers := make([]Handler, len(tokens))
	for i, tok := range tokens {
		handlers[i] = Handler{Token: tok, seeker: seeker}
	}
	return handlers
}
