// Package detector classifies pages by URL and detects the language of
// extracted text.
package detector

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// languageSample bounds how much text is fed to the language model.
const languageSample = 2000

// supportedLanguages keeps the model set small; loading every language
// model takes seconds and hundreds of megabytes.
var supportedLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Japanese,
	lingua.Chinese,
}

var (
	languageDetector     lingua.LanguageDetector
	languageDetectorOnce sync.Once
)

// IsYouTube reports whether rawURL is a YouTube video page.
func IsYouTube(rawURL string) bool {
	return strings.Contains(rawURL, "youtube.com/watch") || strings.Contains(rawURL, "youtu.be/")
}

// VideoID returns the video id of a YouTube URL, or "" if there is none.
func VideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	switch {
	case strings.HasSuffix(host, "youtu.be"):
		return strings.Trim(u.Path, "/")
	case strings.Contains(host, "youtube.com"):
		return u.Query().Get("v")
	}
	return ""
}

// WatchURL is the URL that opens video id at the given offset.
func WatchURL(id string, seconds int) string {
	v := url.Values{}
	v.Set("v", id)
	return "https://www.youtube.com/watch?" + v.Encode() + "&t=" + strconv.Itoa(max(seconds, 0)) + "s"
}

// Language returns the name of the language text is written in, such as
// "English", or "" when detection is not confident.
func Language(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if r := []rune(text); len(r) > languageSample {
		text = string(r[:languageSample])
	}

	languageDetectorOnce.Do(func() {
		languageDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supportedLanguages...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})

	lang, ok := languageDetector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return lang.String()
}
