package eventbus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicNames(t *testing.T) {
	topic := NewTopic("svc.events")

	assert.Equal(t, "svc.events", topic.Base())
	assert.Equal(t, "svc.events.dlq", topic.DLQ())
	assert.Equal(t, []string{
		"svc.events.retry.1",
		"svc.events.retry.2",
		"svc.events.retry.3",
		"svc.events.retry.4",
		"svc.events.retry.5",
	}, topic.RetryTopics())

	name, err := topic.RetryTopic(2)
	require.NoError(t, err)
	assert.Equal(t, "svc.events.retry.2", name)

	_, err = topic.RetryTopic(0)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)
	_, err = topic.RetryTopic(len(RetryDelays) + 1)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)
}

func TestParseRetryDelayFromTopicNameRoundTrip(t *testing.T) {
	topic := NewTopic("svc.events")
	for i, name := range topic.RetryTopics() {
		d, ok := ParseRetryDelayFromTopicName(name)
		require.True(t, ok, name)
		assert.Equal(t, RetryDelays[i], d)
	}

	for _, bad := range []string{"svc.events", "svc.events.retry.", "svc.events.retry.0", "svc.events.retry.99", "svc.events.retry.10s"} {
		_, ok := ParseRetryDelayFromTopicName(bad)
		assert.False(t, ok, bad)
	}
}

func TestNewJSONEvent(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	evt, err := NewJSONEvent("", payload{Name: "x"}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, len(RetryDelays), evt.MaxRetry)
	assert.Zero(t, evt.Retry)

	out, err := DecodeJSON[payload](evt)
	require.NoError(t, err)
	assert.Equal(t, "x", out.Name)

	evt, err = NewJSONEvent("fixed", payload{}, 2)
	require.NoError(t, err)
	assert.Equal(t, "fixed", evt.ID)
	assert.Equal(t, 2, evt.MaxRetry)
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	_, err := DecodeJSON[map[string]string](Event{Payload: []byte("[1,2]")})
	assert.Error(t, err)
}

func TestRouteFailure(t *testing.T) {
	topic := NewTopic("svc.events")
	cause := errors.New("boom")

	dest, next := routeFailure(topic, Event{ID: "a", MaxRetry: 3}, cause)
	assert.Equal(t, "svc.events.retry.1", dest)
	assert.Equal(t, 1, next.Retry)
	assert.Equal(t, "boom", next.LastError)

	dest, next = routeFailure(topic, Event{ID: "a", Retry: 3, MaxRetry: 3}, cause)
	assert.Equal(t, "svc.events.dlq", dest)
	assert.Equal(t, 3, next.Retry)
}

func TestRetryWait(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 4*time.Second, retryWait(ts, 10*time.Second, ts.Add(6*time.Second)))
	assert.Zero(t, retryWait(ts, 10*time.Second, ts.Add(10*time.Second)))
	assert.Zero(t, retryWait(ts, 10*time.Second, ts.Add(time.Minute)))
}

func TestTopicSpecs(t *testing.T) {
	specs := topicSpecs(NewTopic("svc.events"), 3)
	require.Len(t, specs, 2+len(RetryDelays))
	assert.Equal(t, "svc.events", specs[0].Topic)
	assert.Equal(t, 3, specs[0].NumPartitions)
	assert.Equal(t, "svc.events.dlq", specs[1].Topic)
	assert.Equal(t, 1, specs[1].NumPartitions)
}
