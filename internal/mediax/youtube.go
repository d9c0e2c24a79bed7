// Package mediax contains small helpers for working with hosted media URLs.
package mediax

import (
	"fmt"
	"net/url"
	"strings"
)

// PlaceholderThumbnail is served when no video id can be extracted.
const PlaceholderThumbnail = "https://placehold.co/600x400?text=Video+Thumbnail"

// ExtractYouTubeID pulls the video id out of a youtube.com or youtu.be URL.
// Returns "" when the URL carries no recognizable id.
func ExtractYouTubeID(raw string) string {
	u, err := url.Parse(raw)
	if err == nil && u.Host != "" {
		switch {
		case u.Host == "youtu.be":
			return strings.TrimPrefix(u.Path, "/")
		case strings.Contains(u.Host, "youtube.com"):
			return u.Query().Get("v")
		}
		return ""
	}

	// Not a parseable URL; fall back to simple string extraction.
	if _, after, ok := strings.Cut(raw, "youtu.be/"); ok {
		id, _, _ := strings.Cut(after, "?")
		return id
	}
	if _, after, ok := strings.Cut(raw, "youtube.com/watch?v="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	return ""
}

// YouTubeThumbnail derives the high-quality thumbnail URL for a video,
// falling back to a placeholder when the id cannot be determined.
func YouTubeThumbnail(raw string) string {
	if id := ExtractYouTubeID(raw); id != "" {
		return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id)
	}
	return PlaceholderThumbnail
}
