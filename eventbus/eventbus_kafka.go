package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"yt-summary/internal/logger"
)

// KafkaEventBus implements EventBus on confluent-kafka-go.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	producerCfg := &kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	}
	if maxBytes := getKafkaMessageMaxBytesFromEnv(); maxBytes > 0 {
		(*producerCfg)["message.max.bytes"] = maxBytes
	}

	p, err := kafka.NewProducer(producerCfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	// delivery reports for messages produced without a delivery channel
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Log.Errorf("delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				logger.Log.Errorf("kafka error: %v", ev)
			}
		}
	}()

	return &KafkaEventBus{
		Producer: p,
		Brokers:  brokers,
	}, nil
}

func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		logger.Log.Warnf("%d messages still queued after flush", remaining)
	}
	k.Producer.Close()
	logger.Log.Info("kafka producer closed")
}

// Publish writes event to topic and waits for the broker ack.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// buffered so a late delivery report after ctx cancel never blocks librdkafka
	deliveryChan := make(chan kafka.Event, 1)

	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver to %s: %w", topic, m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (k *KafkaEventBus) newConsumer(groupID string) (*kafka.Consumer, error) {
	consumerCfg := &kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	}
	if maxPoll := getKafkaMaxPollIntervalMsFromEnv(); maxPoll > 0 {
		(*consumerCfg)["max.poll.interval.ms"] = maxPoll
	}
	return kafka.NewConsumer(consumerCfg)
}

// Subscribe consumes the base topic. Offsets are committed only after the handler
// succeeds or the failed event has been handed to a retry topic or the DLQ.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer c.Close()

	topicsToSubscribe := []string{topic.Base()}
	if err := c.SubscribeTopics(topicsToSubscribe, nil); err != nil {
		return fmt.Errorf("subscribe %v: %w", topicsToSubscribe, err)
	}

	logger.Log.Infof("consumer %s started, topics: %s", groupID, strings.Join(topicsToSubscribe, ", "))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("consumer stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Log.Errorf("bad event payload on %s: %v, skipping", *msg.TopicPartition.Topic, err)
			c.CommitMessage(msg)
			continue
		}
		if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
			evt.MaxRetry = len(RetryDelays)
		}

		if evt.Retry > 0 {
			logger.Log.Infof("handling event %s (retry %d/%d) from %s", evt.ID, evt.Retry, evt.MaxRetry, *msg.TopicPartition.Topic)
		} else {
			logger.Log.Debugf("handling event %s from %s", evt.ID, *msg.TopicPartition.Topic)
		}

		if herr := handler(ctx, evt); herr != nil {
			dest, next := routeFailure(topic, evt, herr)
			if dest == topic.DLQ() {
				logger.Log.Errorf("event %s exhausted retries, sending to %s: %v", evt.ID, dest, herr)
			} else {
				logger.Log.Warnf("event %s failed, scheduling retry %d/%d on %s", evt.ID, next.Retry, next.MaxRetry, dest)
			}
			if perr := k.Publish(ctx, dest, next); perr != nil {
				logger.Log.Errorf("publish to %s failed: %v, offset not committed", dest, errors.Join(ErrRetryScheduleFailed, perr))
				continue
			}
		}

		if _, err := c.CommitMessage(msg); err != nil {
			logger.Log.Errorf("commit offset: %v", err)
		}
	}
}

// routeFailure decides where a failed event goes next: the following retry topic,
// or the DLQ once MaxRetry attempts have been used.
func routeFailure(topic Topic, evt Event, cause error) (string, Event) {
	evt.LastError = cause.Error()
	attempt := evt.Retry + 1
	if attempt > evt.MaxRetry {
		return topic.DLQ(), evt
	}
	dest, err := topic.RetryTopic(attempt)
	if err != nil {
		return topic.DLQ(), evt
	}
	evt.Retry = attempt
	return dest, evt
}

// retryWait is how long a message published at ts on a topic with the given delay
// still has to wait before it may be re-injected.
func retryWait(ts time.Time, delay time.Duration, now time.Time) time.Duration {
	readyAt := ts.Add(delay)
	if !now.Before(readyAt) {
		return 0
	}
	return readyAt.Sub(now)
}

// StartRetryReinjector consumes every retry topic and republishes due events to the base topic.
func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("create retry reinjector: %w", err)
	}
	defer c.Close()

	retryTopics := topic.RetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("subscribe %v: %w", retryTopics, err)
	}

	logger.Log.Infof("retry reinjector %s started, topics: %s", groupID, strings.Join(retryTopics, ", "))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("retry reinjector stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("retry reinjector fatal error: %w", err)
				}
			}
			logger.Log.Errorf("retry reinjector read: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		topicName := *msg.TopicPartition.Topic
		delay, ok := ParseRetryDelayFromTopicName(topicName)
		if !ok {
			logger.Log.Errorf("cannot parse retry topic %s, skipping", topicName)
			c.CommitMessage(msg)
			continue
		}

		if wait := retryWait(msg.Timestamp, delay, time.Now()); wait > 0 {
			// rewind so the same message comes back once it is due
			if wait > 500*time.Millisecond {
				wait = 500 * time.Millisecond
			}
			time.Sleep(wait)
			if err := c.Seek(msg.TopicPartition, 0); err != nil {
				logger.Log.Errorf("seek %s: %v", topicName, err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Log.Errorf("bad event payload on %s: %v, skipping", topicName, err)
			c.CommitMessage(msg)
			continue
		}

		logger.Log.Infof("reinjecting event %s from %s to %s (retry %d)", evt.ID, topicName, topic.Base(), evt.Retry)
		if err := k.Publish(ctx, topic.Base(), evt); err != nil {
			logger.Log.Errorf("reinject event %s: %v, offset not committed", evt.ID, err)
			if err := c.Seek(msg.TopicPartition, 0); err != nil {
				logger.Log.Errorf("seek %s: %v", topicName, err)
			}
			continue
		}

		if _, err := c.CommitMessage(msg); err != nil {
			logger.Log.Errorf("commit offset after reinject: %v", err)
		}
	}
}
