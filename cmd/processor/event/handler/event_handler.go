package handler

import (
	"context"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/eventbus"
	"yt-summary/events"
	"yt-summary/internal/logger"
)

// RequestRecorder is implemented by repositories.VideoStatsRepository.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, resourceID primitive.ObjectID, videoID, eventID string) (bool, error)
}

// EventHandler consumes summarization events off the API's hot path.
type EventHandler struct {
	stats RequestRecorder
}

func NewEventHandler(stats RequestRecorder) *EventHandler {
	return &EventHandler{stats: stats}
}

// Handle routes a raw bus event by its type. Unknown types are acknowledged and skipped.
func (h *EventHandler) Handle(ctx context.Context, ev eventbus.Event) error {
	// BaseEvent.Type sits at the top level of every payload
	var peek struct {
		Type events.EventType `json:"type"`
	}
	if err := json.Unmarshal(ev.Payload, &peek); err != nil {
		return err
	}

	switch peek.Type {
	case events.SummarizationCreated:
		v, err := eventbus.DecodeJSON[events.SummarizationCreatedEvent](ev)
		if err != nil {
			return err
		}
		if v.ID == "" {
			v.ID = ev.ID
		}
		return h.HandleSummarizationCreated(ctx, &v)
	default:
		logger.Log.Debugf("skip event %s of type %q", ev.ID, peek.Type)
		return nil
	}
}

// HandleSummarizationCreated counts the request in the video's stats. Redelivered
// events are recognized by id and counted once.
func (h *EventHandler) HandleSummarizationCreated(ctx context.Context, event *events.SummarizationCreatedEvent) error {
	counted, err := h.stats.RecordRequest(ctx, event.VideoResourceID, event.YoutubeVideoID, event.ID)
	if err != nil {
		logger.ErrorWithFields("failed to record video request", logger.Fields{
			"event_id":          event.ID,
			"video_resource_id": event.VideoResourceID.Hex(),
			"youtube_video_id":  event.YoutubeVideoID,
			"error":             err.Error(),
		})
		return err
	}

	if !counted {
		logger.Log.Infof("event %s already counted for video %s", event.ID, event.YoutubeVideoID)
		return nil
	}
	logger.Log.Infof("request recorded for video %s (summarization %s)", event.YoutubeVideoID, event.SummarizationID.Hex())
	return nil
}
