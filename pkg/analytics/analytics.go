// Package analytics sizes extracted text before it is sent for summarizing.
package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// tokensPerWord is a rough ratio for English text.
const tokensPerWord = 1.3

// TokenInfo is the size of a piece of text.
type TokenInfo struct {
	Words  int `yaml:"words" json:"words"`
	Tokens int `yaml:"estimated_tokens" json:"estimated_tokens"`
}

// Measure counts whitespace separated words in text and estimates tokens.
func Measure(text string) TokenInfo {
	words := len(strings.Fields(text))
	return TokenInfo{
		Words:  words,
		Tokens: EstimateTokens(words),
	}
}

// EstimateTokens returns ceil(words * 1.3).
func EstimateTokens(words int) int {
	return int(math.Ceil(float64(words) * tokensPerWord))
}

func (t TokenInfo) String() string {
	return fmt.Sprintf("📊 %s words | ~%s tokens", groupThousands(t.Words), groupThousands(t.Tokens))
}

// groupThousands formats n with comma separators, e.g. 12345 -> "12,345".
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
