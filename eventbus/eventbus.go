package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RetryDelays holds the fixed delay for each retry attempt (1-based).
var RetryDelays = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Topic derives the retry and DLQ topic names from a base name.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ returns the dead letter topic, e.g. my_topic.dlq.
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// RetryTopics lists every delay topic in attempt order (base.retry.1, base.retry.2, ...).
func (t Topic) RetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i := range RetryDelays {
		topics[i] = retryTopicName(t.base, i+1)
	}
	return topics
}

// RetryTopic returns the delay topic for the given attempt (1-based).
func (t Topic) RetryTopic(attempt int) (string, error) {
	if attempt <= 0 || attempt > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	return retryTopicName(t.base, attempt), nil
}

func retryTopicName(base string, attempt int) string {
	return fmt.Sprintf("%s.retry.%d", base, attempt)
}

// Event is the envelope written to Kafka.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

type EventHandler func(ctx context.Context, event Event) error

type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe consumes the base topic and routes failures to retry topics or the DLQ.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector moves due events from the retry topics back to the base topic.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

var (
	ErrMaxRetryExceeded    = errors.New("max retry exceeded")
	ErrRetryScheduleFailed = errors.New("failed to schedule retry or dlq")
)
