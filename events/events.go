package events

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	SummarizationCreated EventType = "summarization.created"
)

// BaseEvent is embedded by every event; Type sits at the top level of the payload
// so consumers can peek at it before decoding the rest.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func NewBaseEvent(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    source,
		Version:   "1.0",
	}
}

// SummarizationCreatedEvent is emitted after a user's summarization record is committed,
// whether the video resource was freshly built or reused.
type SummarizationCreatedEvent struct {
	BaseEvent
	SummarizationID primitive.ObjectID `json:"summarization_id"`
	VideoResourceID primitive.ObjectID `json:"video_resource_id"`
	UserID          primitive.ObjectID `json:"user_id"`
	YoutubeVideoID  string             `json:"youtube_video_id"`
	Reused          bool               `json:"reused"`
}
