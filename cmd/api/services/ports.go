package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/media"
	"yt-summary/models"
	"yt-summary/storage"
)

// The interfaces below are satisfied by the repositories, media, transcriber,
// summarizer, storage and event dispatcher packages; tests use servicetest fakes.

type VideoResourceStore interface {
	FindByYoutubeVideoID(ctx context.Context, videoID string) (*models.VideoResource, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.VideoResource, error)
	Create(ctx context.Context, v models.VideoResource) (*models.VideoResource, error)
}

type SummarizationStore interface {
	Create(ctx context.Context, userID, videoResourceID primitive.ObjectID) (*models.Summarization, error)
	Exists(ctx context.Context, userID, videoResourceID primitive.ObjectID) (bool, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Summarization, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.SummarizationWithResource, error)
}

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

type ChatEntryStore interface {
	Insert(ctx context.Context, e models.ChatEntry) (*models.ChatEntry, error)
	ListBySummarization(ctx context.Context, summarizationID primitive.ObjectID) ([]models.ChatEntry, error)
}

// Transactor runs fn in one DB transaction; stores called with the ctx passed to fn join it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MediaSource interface {
	FetchMetadata(ctx context.Context, videoID string) (media.Metadata, error)
	FetchAudio(ctx context.Context, videoID, dir string) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, chunks []string) (string, error)
	Answer(ctx context.Context, summary, question string) (string, error)
}

type ArtifactStore interface {
	Store(ctx context.Context, name, content string) (storage.Artifact, error)
	SignedURL(ctx context.Context, key string) (string, error)
	Load(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishSummarizationCreated(ctx context.Context, record models.Summarization, resource models.VideoResource, reused bool) error
}
