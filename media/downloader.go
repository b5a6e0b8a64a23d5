package media

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Downloader fetches the audio-only stream of a video with yt-dlp.
type Downloader struct {
	binary string
}

func NewDownloader(binary string) *Downloader {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Downloader{binary: binary}
}

// DownloadAudio writes the best audio-only stream into dir and returns its path.
func (d *Downloader) DownloadAudio(ctx context.Context, videoID, dir string) (string, error) {
	template := filepath.Join(dir, "source.%(ext)s")
	args := []string{
		"--format", "bestaudio/best",
		"--output", template,
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		"--no-progress",
		"--print", "after_move:filepath",
		WatchURL(videoID),
	}
	cmd := exec.CommandContext(ctx, d.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		if isUnavailableOutput(stderr) {
			return "", fmt.Errorf("%w: %s", ErrUnavailable, stderr)
		}
		return "", fmt.Errorf("yt-dlp download: %w: %s", err, stderr)
	}

	path := lastLine(string(output))
	if path == "" {
		return "", fmt.Errorf("yt-dlp download: no output file reported for %s", videoID)
	}
	return path, nil
}

func isUnavailableOutput(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, marker := range []string{"video unavailable", "private video", "has been removed", "sign in to confirm your age", "not available in your country"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
