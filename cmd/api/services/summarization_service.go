package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/internal/logger"
	"yt-summary/media"
	"yt-summary/models"
	"yt-summary/repositories"
	"yt-summary/summarizer"
)

// SummarizationOptions carries the tunables of the summarization pipeline.
type SummarizationOptions struct {
	MaxDurationSeconds int64
	TempDir            string
	ChunkSize          int
	ChunkOverlap       int
	// MaxChunks caps how many transcript chunks reach the model; 0 keeps all of them.
	MaxChunks int
}

type SummarizationDeps struct {
	Resources   VideoResourceStore
	Records     SummarizationStore
	Tx          Transactor
	Media       MediaSource
	Transcriber Transcriber
	Summarizer  Summarizer
	Artifacts   ArtifactStore
	// Events is optional.
	Events EventPublisher
}

// SummarizationService turns a YouTube URL into a summarization owned by a user.
// Video resources are shared: a video is processed once and later requests only claim it.
type SummarizationService struct {
	resources   VideoResourceStore
	records     SummarizationStore
	tx          Transactor
	media       MediaSource
	transcriber Transcriber
	summarizer  Summarizer
	artifacts   ArtifactStore
	events      EventPublisher
	opts        SummarizationOptions
}

func NewSummarizationService(deps SummarizationDeps, opts SummarizationOptions) *SummarizationService {
	if opts.MaxDurationSeconds <= 0 {
		opts.MaxDurationSeconds = 1800
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = summarizer.DefaultChunkSize
	}
	return &SummarizationService{
		resources:   deps.Resources,
		records:     deps.Records,
		tx:          deps.Tx,
		media:       deps.Media,
		transcriber: deps.Transcriber,
		summarizer:  deps.Summarizer,
		artifacts:   deps.Artifacts,
		events:      deps.Events,
		opts:        opts,
	}
}

// Generated is the result of a successful Generate call.
type Generated struct {
	ID             primitive.ObjectID
	Title          string
	YoutubeVideoID string
}

// errResourceTaken aborts the creating transaction when another request inserted the same video first.
var errResourceTaken = errors.New("video resource created concurrently")

// Generate parses rawURL, reuses or builds the video resource and links it to userID.
func (s *SummarizationService) Generate(ctx context.Context, rawURL string, userID primitive.ObjectID) (*Generated, error) {
	const op = "SummarizationService.Generate"

	videoID, err := media.ParseVideoID(rawURL)
	if err != nil {
		return nil, newError(op, KindInvalidInput, MsgInvalidURL, err)
	}

	resource, err := s.resources.FindByYoutubeVideoID(ctx, videoID)
	switch {
	case err == nil:
		record, err := s.claim(ctx, op, userID, resource)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, *record, *resource, true)
		return generated(record, resource), nil
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}

	record, resource, reused, err := s.build(ctx, op, videoID, userID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, *record, *resource, reused)
	return generated(record, resource), nil
}

func generated(record *models.Summarization, resource *models.VideoResource) *Generated {
	return &Generated{ID: record.ID, Title: resource.Title, YoutubeVideoID: resource.YoutubeVideoID}
}

// claim links an existing resource to the user.
func (s *SummarizationService) claim(ctx context.Context, op string, userID primitive.ObjectID, resource *models.VideoResource) (*models.Summarization, error) {
	exists, err := s.records.Exists(ctx, userID, resource.ID)
	if err != nil {
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}
	if exists {
		return nil, newError(op, KindAlreadyExists, MsgAlreadyExists, nil)
	}

	record, err := s.records.Create(ctx, userID, resource.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(op, KindConflict, MsgConflict, err)
		}
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}
	return record, nil
}

// build runs the full pipeline for a video nobody has processed yet. Artifacts uploaded
// here are deleted again if the request fails or loses the race for the resource.
func (s *SummarizationService) build(ctx context.Context, op, videoID string, userID primitive.ObjectID) (record *models.Summarization, resource *models.VideoResource, reused bool, err error) {
	meta, err := s.media.FetchMetadata(ctx, videoID)
	if err != nil {
		return nil, nil, false, newError(op, KindMediaUnavailable, MsgMediaUnavailable, err)
	}
	// live streams and premieres report no length
	if meta.DurationSeconds <= 0 {
		return nil, nil, false, newError(op, KindMediaUnavailable, MsgMediaUnavailable, fmt.Errorf("video %s reports duration %ds", videoID, meta.DurationSeconds))
	}
	if meta.DurationSeconds > s.opts.MaxDurationSeconds {
		msg := fmt.Sprintf("Video is too long (max %d minutes)", s.opts.MaxDurationSeconds/60)
		return nil, nil, false, newError(op, KindVideoTooLong, msg, nil)
	}

	var uploaded []string
	defer func() {
		if err != nil || reused {
			s.discard(ctx, uploaded)
		}
	}()

	text, err := s.transcribe(ctx, op, videoID)
	if err != nil {
		return nil, nil, false, err
	}

	// Each request writes under its own folder so a losing request can clean up
	// without touching the winner's files.
	folder := uuid.New().String()

	transcript, err := s.artifacts.Store(ctx, path.Join(folder, "transcription-"+videoID+".txt"), text)
	if err != nil {
		return nil, nil, false, newError(op, KindStorage, MsgStorageFailed, err)
	}
	uploaded = append(uploaded, transcript.Key)

	chunks := summarizer.Truncate(summarizer.SplitText(text, s.opts.ChunkSize, s.opts.ChunkOverlap), s.opts.MaxChunks)
	summary, err := s.summarizer.Summarize(ctx, chunks)
	if err != nil {
		if errors.Is(err, summarizer.ErrQuotaExceeded) {
			return nil, nil, false, newError(op, KindQuotaExceeded, MsgQuotaExceeded, err)
		}
		return nil, nil, false, newError(op, KindSummarization, MsgSummarizationFailed, err)
	}

	summaryArtifact, err := s.artifacts.Store(ctx, path.Join(folder, "summarization-"+videoID+".txt"), summary)
	if err != nil {
		return nil, nil, false, newError(op, KindStorage, MsgStorageFailed, err)
	}
	uploaded = append(uploaded, summaryArtifact.Key)

	candidate := models.VideoResource{
		YoutubeVideoID:   videoID,
		Title:            meta.Title,
		DurationSeconds:  meta.DurationSeconds,
		TranscriptionKey: transcript.Key,
		TranscriptionURL: transcript.URL,
		SummarizationKey: summaryArtifact.Key,
		SummarizationURL: summaryArtifact.URL,
		CreatedAt:        time.Now(),
	}

	txErr := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		created, err := s.resources.Create(ctx, candidate)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return errResourceTaken
			}
			return err
		}
		rec, err := s.records.Create(ctx, userID, created.ID)
		if err != nil {
			return err
		}
		resource, record = created, rec
		return nil
	})

	switch {
	case txErr == nil:
		return record, resource, false, nil
	case errors.Is(txErr, errResourceTaken):
		logger.Log.Infof("video %s was stored by a concurrent request, reusing it", videoID)
	case errors.Is(txErr, repositories.ErrDuplicate):
		return nil, nil, false, newError(op, KindConflict, MsgConflict, txErr)
	default:
		return nil, nil, false, newError(op, KindDatabase, MsgDatabase, txErr)
	}

	winner, err := s.resources.FindByYoutubeVideoID(ctx, videoID)
	if err != nil {
		return nil, nil, false, newError(op, KindDatabase, MsgDatabase, err)
	}
	record, err = s.records.Create(ctx, userID, winner.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, false, newError(op, KindConflict, MsgConflict, err)
		}
		return nil, nil, false, newError(op, KindDatabase, MsgDatabase, err)
	}
	return record, winner, true, nil
}

// transcribe downloads the audio into a private temp dir and transcribes it.
// The dir is gone when this returns.
func (s *SummarizationService) transcribe(ctx context.Context, op, videoID string) (string, error) {
	dir, err := os.MkdirTemp(s.opts.TempDir, "yt-summary-")
	if err != nil {
		return "", newError(op, KindInternal, MsgInternal, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Log.Warnf("remove temp dir %s: %v", dir, err)
		}
	}()

	audio, err := s.media.FetchAudio(ctx, videoID, dir)
	if err != nil {
		if errors.Is(err, media.ErrUnavailable) {
			return "", newError(op, KindMediaUnavailable, MsgMediaUnavailable, err)
		}
		return "", newError(op, KindTranscription, MsgTranscriptionFailed, err)
	}

	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", newError(op, KindTranscription, MsgTranscriptionFailed, err)
	}
	return text, nil
}

// discard removes uploaded artifacts. Failures are logged; the request outcome does not change.
func (s *SummarizationService) discard(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.artifacts.Delete(ctx, key); err != nil {
			logger.Log.Warnf("delete artifact %s: %v", key, err)
		}
	}
}

func (s *SummarizationService) publish(ctx context.Context, record models.Summarization, resource models.VideoResource, reused bool) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishSummarizationCreated(ctx, record, resource, reused); err != nil {
		logger.Log.Errorf("publish summarization.created for %s: %v", record.ID.Hex(), err)
	}
}

// SummarizationItem is one row of a user's listing, or a single detail view.
type SummarizationItem struct {
	ID               primitive.ObjectID
	Title            string
	YoutubeVideoID   string
	DurationSeconds  int64
	TranscriptionURL string
	SummarizationURL string
	CreatedAt        time.Time
}

// List returns the user's summarizations joined with their resources. Order is not guaranteed.
func (s *SummarizationService) List(ctx context.Context, userID primitive.ObjectID) ([]SummarizationItem, error) {
	const op = "SummarizationService.List"

	rows, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}

	out := make([]SummarizationItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.item(ctx, row.Summarization, row.Resource))
	}
	return out, nil
}

// Get returns one summarization owned by userID. Someone else's record reads as not found.
func (s *SummarizationService) Get(ctx context.Context, userID, id primitive.ObjectID) (*SummarizationItem, error) {
	const op = "SummarizationService.Get"

	record, resource, err := s.owned(ctx, op, userID, id)
	if err != nil {
		return nil, err
	}
	item := s.item(ctx, *record, *resource)
	return &item, nil
}

// owned loads a record and its resource, checking ownership.
func (s *SummarizationService) owned(ctx context.Context, op string, userID, id primitive.ObjectID) (*models.Summarization, *models.VideoResource, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, newError(op, KindNotFound, MsgNotFound, err)
		}
		return nil, nil, newError(op, KindDatabase, MsgDatabase, err)
	}
	if record.UserID != userID {
		return nil, nil, newError(op, KindNotFound, MsgNotFound, nil)
	}

	resource, err := s.resources.FindByID(ctx, record.VideoResourceID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, newError(op, KindNotFound, MsgNotFound, err)
		}
		return nil, nil, newError(op, KindDatabase, MsgDatabase, err)
	}
	return record, resource, nil
}

// item re-signs the artifact links; the stored URLs are a fallback once signing fails.
func (s *SummarizationService) item(ctx context.Context, record models.Summarization, resource models.VideoResource) SummarizationItem {
	return SummarizationItem{
		ID:               record.ID,
		Title:            resource.Title,
		YoutubeVideoID:   resource.YoutubeVideoID,
		DurationSeconds:  resource.DurationSeconds,
		TranscriptionURL: s.freshURL(ctx, resource.TranscriptionKey, resource.TranscriptionURL),
		SummarizationURL: s.freshURL(ctx, resource.SummarizationKey, resource.SummarizationURL),
		CreatedAt:        record.CreatedAt,
	}
}

func (s *SummarizationService) freshURL(ctx context.Context, key, stored string) string {
	if key == "" {
		return stored
	}
	url, err := s.artifacts.SignedURL(ctx, key)
	if err != nil {
		logger.Log.Warnf("re-sign %s: %v", key, err)
		return stored
	}
	return url
}
