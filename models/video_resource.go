package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoResource is one processed YouTube video, shared by every user who summarizes it.
// Collection: video_resources
type VideoResource struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	YoutubeVideoID   string             `bson:"youtube_video_id" json:"youtube_video_id"`
	Title            string             `bson:"title" json:"title"`
	DurationSeconds  int64              `bson:"duration_seconds" json:"duration_seconds"`
	TranscriptionKey string             `bson:"transcription_key" json:"-"`
	TranscriptionURL string             `bson:"transcription_url" json:"transcription_url"`
	SummarizationKey string             `bson:"summarization_key" json:"-"`
	SummarizationURL string             `bson:"summarization_url" json:"summarization_url"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
}
