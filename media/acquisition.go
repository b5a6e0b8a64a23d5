package media

import (
	"context"
	"fmt"
	"path/filepath"
)

// MetadataSource is satisfied by YouTubeMetadata.
type MetadataSource interface {
	FetchMetadata(ctx context.Context, videoID string) (Metadata, error)
}

// Acquirer combines metadata lookup with audio download and extraction.
type Acquirer struct {
	metadata     MetadataSource
	downloader   *Downloader
	ffmpegBinary string
}

func NewAcquirer(metadata MetadataSource, downloader *Downloader, ffmpegBinary string) *Acquirer {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Acquirer{metadata: metadata, downloader: downloader, ffmpegBinary: ffmpegBinary}
}

func (a *Acquirer) FetchMetadata(ctx context.Context, videoID string) (Metadata, error) {
	return a.metadata.FetchMetadata(ctx, videoID)
}

// FetchAudio downloads the audio stream into dir and extracts it to dir/audio.mp3.
// The caller owns dir and removes it.
func (a *Acquirer) FetchAudio(ctx context.Context, videoID, dir string) (string, error) {
	source, err := a.downloader.DownloadAudio(ctx, videoID, dir)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(dir, "audio.mp3")
	if err := ExtractMP3(ctx, a.ffmpegBinary, source, dest); err != nil {
		return "", fmt.Errorf("extract audio for %s: %w", videoID, err)
	}
	return dest, nil
}
