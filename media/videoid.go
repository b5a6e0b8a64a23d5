package media

import (
	"errors"
	"net/url"
	"strings"
)

const (
	HostYouTube   = "www.youtube.com"
	HostShortLink = "youtu.be"
)

var ErrInvalidURL = errors.New("invalid youtube url")

// ParseVideoID extracts the video id from a www.youtube.com watch URL (the v query
// parameter) or a youtu.be short link (the path without its leading slash).
func ParseVideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidURL
	}

	var id string
	switch u.Host {
	case HostShortLink:
		id = strings.TrimPrefix(u.Path, "/")
	case HostYouTube:
		id = u.Query().Get("v")
	default:
		return "", ErrInvalidURL
	}

	if id == "" {
		return "", ErrInvalidURL
	}
	return id, nil
}

// WatchURL is the canonical URL handed to the downloader.
func WatchURL(videoID string) string {
	return "https://" + HostYouTube + "/watch?v=" + url.QueryEscape(videoID)
}
