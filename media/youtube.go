package media

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrUnavailable means the video does not exist, is private, or cannot be downloaded.
var ErrUnavailable = errors.New("video is unavailable")

// Metadata is what admission control needs to know before any download happens.
type Metadata struct {
	VideoID         string
	Title           string
	DurationSeconds int64
}

// YouTubeMetadata reads titles and durations from the YouTube Data API v3.
type YouTubeMetadata struct {
	service *youtube.Service
}

func NewYouTubeMetadata(ctx context.Context, apiKey string) (*YouTubeMetadata, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY is required")
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtube.NewService: %w", err)
	}
	return &YouTubeMetadata{service: svc}, nil
}

func (y *YouTubeMetadata) FetchMetadata(ctx context.Context, videoID string) (Metadata, error) {
	resp, err := y.service.Videos.
		List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return Metadata{}, fmt.Errorf("youtube videos.list %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return Metadata{}, fmt.Errorf("%w: %s not found", ErrUnavailable, videoID)
	}
	return metadataFromVideo(resp.Items[0])
}

func metadataFromVideo(v *youtube.Video) (Metadata, error) {
	if v == nil || v.Snippet == nil || v.ContentDetails == nil {
		return Metadata{}, fmt.Errorf("%w: incomplete metadata", ErrUnavailable)
	}
	// live and upcoming broadcasts have no fixed length to admit
	if v.Snippet.LiveBroadcastContent != "" && v.Snippet.LiveBroadcastContent != "none" {
		return Metadata{}, fmt.Errorf("%w: %s is a %s broadcast", ErrUnavailable, v.Id, v.Snippet.LiveBroadcastContent)
	}

	d, err := ParseISODuration(v.ContentDetails.Duration)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return Metadata{
		VideoID:         v.Id,
		Title:           v.Snippet.Title,
		DurationSeconds: int64(d.Seconds()),
	}, nil
}
