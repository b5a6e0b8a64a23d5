package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"yt-summary/cmd/processor/event/handler"
	"yt-summary/config"
	"yt-summary/db"
	"yt-summary/eventbus"
	"yt-summary/internal/logger"
	"yt-summary/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Init(ctx, cfg.Mongo); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	brokers := eventbus.GetBrokers()
	for _, t := range eventbus.AllTopics {
		if err := eventbus.EnsureTopics(brokers, t, cfg.EventBus.Partitions); err != nil {
			logger.Log.Errorf("failed to ensure eventbus topics for %s: %v", t.Base(), err)
		}
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.Log.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	eventHandler := handler.NewEventHandler(repositories.NewVideoStatsRepository(db.Database()))
	groupID := eventbus.GetGroupID()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bus.Subscribe(ctx, groupID, eventbus.TopicSummarizationEvents, eventHandler.Handle); err != nil && err != context.Canceled {
			logger.Log.Errorf("summarization event consumer stopped: %v", err)
		}
	}()

	// failed events wait in the .retry.N topics until their delay passes, then go back to the base topic
	for _, topic := range eventbus.AllTopics {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reinjectGroup := groupID + "-reinject-" + strings.ReplaceAll(topic.Base(), ".", "-")
			if err := bus.StartRetryReinjector(ctx, reinjectGroup, topic); err != nil && err != context.Canceled {
				logger.Log.Errorf("retry reinjector for %s stopped: %v", topic.Base(), err)
			}
		}()
	}

	logger.InfoWithFields("processor started", logger.Fields{
		"group_id":   groupID,
		"topics":     len(eventbus.AllTopics),
		"partitions": cfg.EventBus.Partitions,
	})

	<-sigChan
	logger.Log.Info("shutting down processor: waiting for consumers and reinjectors")

	cancel()
	wg.Wait()

	logger.Log.Info("processor stopped")
}
