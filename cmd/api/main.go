package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	openai "github.com/sashabaranov/go-openai"

	"yt-summary/cmd/api/auth"
	"yt-summary/cmd/api/event/dispatcher"
	"yt-summary/cmd/api/httpclient"
	"yt-summary/cmd/api/middleware"
	"yt-summary/cmd/api/router"
	"yt-summary/cmd/api/services"
	"yt-summary/config"
	"yt-summary/db"
	"yt-summary/eventbus"
	"yt-summary/internal/logger"
	"yt-summary/media"
	"yt-summary/quota"
	"yt-summary/repositories"
	"yt-summary/storage"
	"yt-summary/summarizer"
	"yt-summary/transcriber"
)

// @title           yt-summary API
// @version         1.0
// @description     Summarizes YouTube videos: transcript, summary and chat over the summary.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
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
	database := db.Database()

	jwtManager, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		logger.Log.Errorf("failed to configure JWT: %v", err)
		os.Exit(1)
	}

	summarizationSvc, err := newSummarizationService(ctx, cfg)
	if err != nil {
		logger.Log.Errorf("failed to build summarization pipeline: %v", err)
		os.Exit(1)
	}

	userRepo := repositories.NewUserRepository(database)
	authSvc := services.NewAuthService(userRepo, jwtManager)

	engine := router.New(router.Deps{
		Auth:           authSvc,
		Users:          services.NewUserService(userRepo),
		Summarizations: summarizationSvc,
		Chat:           services.NewChatService(summarizationSvc, repositories.NewChatEntryRepository(database)),
		Ping:           db.Ping,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           corsHandler.Handler(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("api listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("http server error: %v", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("received shutdown signal, shutting down api...")

	// summarizations in flight get time to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("http server shutdown: %v", err)
	}
	logger.Log.Info("api stopped")
}

// newSummarizationService wires the external clients of the pipeline.
func newSummarizationService(ctx context.Context, cfg config.AppConfig) (*services.SummarizationService, error) {
	database := db.Database()
	aiLogs := repositories.NewAILogRepository(database)

	metadata, err := media.NewYouTubeMetadata(ctx, os.Getenv("YOUTUBE_API_KEY"))
	if err != nil {
		return nil, err
	}
	acquirer := media.NewAcquirer(metadata, media.NewDownloader(cfg.Media.YtDlpBinary), cfg.Media.FfmpegBinary)

	openaiConfig := openai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	openaiConfig.HTTPClient = httpclient.New(httpclient.Config{Timeout: 5 * time.Minute})
	openaiClient := openai.NewClientWithConfig(openaiConfig)

	var completer summarizer.Completer
	switch cfg.Summarization.Provider {
	case "openai":
		completer = summarizer.NewOpenAICompleter(openaiClient, cfg.Summarization.ModelName)
	default:
		completer, err = summarizer.NewGeminiCompleter(ctx, os.Getenv("GEMINI_API_KEY"), cfg.Summarization.ModelName,
			httpclient.New(httpclient.Config{Timeout: 2 * time.Minute}))
		if err != nil {
			return nil, err
		}
	}
	logger.Log.Infof("summaries by %s (%s)", cfg.Summarization.Provider, completer.ModelName())

	s3Client, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	deps := services.SummarizationDeps{
		Resources:   repositories.NewVideoResourceRepository(database),
		Records:     repositories.NewSummarizationRepository(database),
		Tx:          db.NewTransactor(db.Client()),
		Media:       acquirer,
		Transcriber: transcriber.NewWhisper(openaiClient, cfg.Transcription.Model, aiLogs),
		Summarizer:  summarizer.NewEngine(completer, quota.NewSummaryQuotaLimiter(cfg.SummaryQuota), aiLogs),
		Artifacts:   storage.NewS3Store(s3Client, cfg.Storage.Bucket, cfg.Storage.Prefix, cfg.Storage.SignedURLTTL),
	}

	if cfg.EventBus.Enabled {
		brokers := eventbus.GetBrokers()
		if err := eventbus.EnsureTopics(brokers, eventbus.TopicSummarizationEvents, cfg.EventBus.Partitions); err != nil {
			logger.Log.Errorf("failed to ensure eventbus topics: %v", err)
		}
		bus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			return nil, err
		}
		deps.Events = dispatcher.NewEventDispatcher(bus)
	}

	return services.NewSummarizationService(deps, services.SummarizationOptions{
		MaxDurationSeconds: int64(cfg.Media.MaxDurationSeconds),
		TempDir:            cfg.Media.TempDir,
		ChunkSize:          cfg.Summarization.ChunkSize,
		ChunkOverlap:       cfg.Summarization.ChunkOverlap,
		MaxChunks:          cfg.Summarization.MaxChunks,
	}), nil
}
