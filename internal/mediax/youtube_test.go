package mediax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractYouTubeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url extra params", "https://www.youtube.com/watch?v=abc123&t=42s", "abc123"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url with query", "https://youtu.be/abc123?t=10", "abc123"},
		{"unrelated host", "https://example.com/video.mp4", ""},
		{"garbage", "not a url at all", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractYouTubeID(tc.url))
		})
	}
}

func TestYouTubeThumbnail(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://img.youtube.com/vi/abc123/hqdefault.jpg",
		YouTubeThumbnail("https://youtu.be/abc123"))

	assert.Equal(t, PlaceholderThumbnail, YouTubeThumbnail("https://example.com/x.mp4"))
}
