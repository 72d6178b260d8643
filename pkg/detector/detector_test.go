package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsYouTube(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/channel/abc", false},
		{"https://example.com/article", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsYouTube(tt.url))
		})
	}
}

func TestVideoID(t *testing.T) {
	assert.Equal(t, "abc123", VideoID("https://www.youtube.com/watch?v=abc123&list=x"))
	assert.Equal(t, "abc123", VideoID("https://youtu.be/abc123"))
	assert.Equal(t, "", VideoID("https://example.com/watch?v=abc123"))
	assert.Equal(t, "", VideoID("://bad"))
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123&t=125s", WatchURL("abc123", 125))
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123&t=0s", WatchURL("abc123", -4))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "", Language("   "))
	assert.Equal(t, "English", Language("The quick brown fox jumps over the lazy dog while the farmer watches from the porch."))
	assert.Equal(t, "German", Language("Der schnelle braune Fuchs springt über den faulen Hund, während der Bauer von der Veranda aus zusieht."))
}
