package dto

// CreateSummarizationRequestDTO accepts the snake_case field and its camelCase alias.
type CreateSummarizationRequestDTO struct {
	YoutubeVideoURL      string `json:"youtube_video_url" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
	YoutubeVideoURLCamel string `json:"youtubeVideoUrl,omitempty" swaggerignore:"true"`
}

// URL returns whichever of the two fields was sent, preferring youtube_video_url.
func (r CreateSummarizationRequestDTO) URL() string {
	if r.YoutubeVideoURL != "" {
		return r.YoutubeVideoURL
	}
	return r.YoutubeVideoURLCamel
}

type SummarizationCreatedDTO struct {
	ID             string `json:"id" example:"6650c0ffee0000000000abcd"`
	Title          string `json:"title" example:"Never Gonna Give You Up"`
	YoutubeVideoID string `json:"youtube_video_id" example:"dQw4w9WgXcQ"`
}

type SummarizationDTO struct {
	ID               string `json:"id" example:"6650c0ffee0000000000abcd"`
	Title            string `json:"title" example:"Never Gonna Give You Up"`
	YoutubeVideoID   string `json:"youtube_video_id" example:"dQw4w9WgXcQ"`
	DurationSeconds  int64  `json:"duration_seconds" example:"213"`
	TranscriptionURL string `json:"transcription_url"`
	SummarizationURL string `json:"summarization_url"`
	CreatedAt        string `json:"created_at" example:"2025-01-01T12:00:00Z"`
}
