package dispatcher

import (
	"context"
	"fmt"

	"yt-summary/eventbus"
	"yt-summary/events"
	"yt-summary/models"
)

// EventDispatcher publishes API-side domain events.
type EventDispatcher struct {
	bus   eventbus.EventBus
	topic eventbus.Topic
}

func NewEventDispatcher(bus eventbus.EventBus) *EventDispatcher {
	return &EventDispatcher{
		bus:   bus,
		topic: eventbus.TopicSummarizationEvents,
	}
}

// PublishSummarizationCreated announces a committed summarization record.
func (d *EventDispatcher) PublishSummarizationCreated(ctx context.Context, record models.Summarization, resource models.VideoResource, reused bool) error {
	e := events.SummarizationCreatedEvent{
		BaseEvent:       events.NewBaseEvent(events.SummarizationCreated, "api"),
		SummarizationID: record.ID,
		VideoResourceID: resource.ID,
		UserID:          record.UserID,
		YoutubeVideoID:  resource.YoutubeVideoID,
		Reused:          reused,
	}
	evt, err := eventbus.NewJSONEvent(e.ID, e, 0)
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}
	return d.bus.Publish(ctx, d.topic.Base(), evt)
}
