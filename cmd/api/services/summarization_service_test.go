package services_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/cmd/api/services"
	"yt-summary/cmd/api/services/servicetest"
	"yt-summary/media"
	"yt-summary/models"
	"yt-summary/summarizer"
)

const watchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fixture struct {
	db          *servicetest.DB
	media       *servicetest.Media
	transcriber *servicetest.Transcriber
	summarizer  *servicetest.Summarizer
	artifacts   *servicetest.Artifacts
	events      *servicetest.Publisher
	tx          *servicetest.Transactor
	svc         *services.SummarizationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db: servicetest.NewDB(),
		media: servicetest.NewMedia(
			media.Metadata{VideoID: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up", DurationSeconds: 213},
			media.Metadata{VideoID: "longvideo01", Title: "Conference keynote", DurationSeconds: 1801},
			media.Metadata{VideoID: "livestream0", Title: "Live now", DurationSeconds: 0},
			media.Metadata{VideoID: "negative000", Title: "Broken metadata", DurationSeconds: -7646744073},
		),
		transcriber: &servicetest.Transcriber{Text: strings.Repeat("word ", 1000)},
		summarizer:  &servicetest.Summarizer{Summary: "a short summary", Reply: "an answer"},
		artifacts:   servicetest.NewArtifacts(),
		events:      &servicetest.Publisher{},
	}
	f.tx = f.db.Transactor()
	f.svc = services.NewSummarizationService(services.SummarizationDeps{
		Resources:   f.db.Resources(),
		Records:     f.db.Records(),
		Tx:          f.tx,
		Media:       f.media,
		Transcriber: f.transcriber,
		Summarizer:  f.summarizer,
		Artifacts:   f.artifacts,
		Events:      f.events,
	}, services.SummarizationOptions{
		MaxDurationSeconds: 1800,
		TempDir:            t.TempDir(),
		ChunkSize:          1000,
		MaxChunks:          3,
	})
	return f
}

func (f *fixture) assertTempDirsRemoved(t *testing.T) {
	t.Helper()
	for _, dir := range f.media.AudioDirs() {
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err), "temp dir %s still exists", dir)
	}
}

func requireKind(t *testing.T, err error, kind services.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, services.KindOf(err), "error: %v", err)
}

func TestGenerateNewVideo(t *testing.T) {
	f := newFixture(t)
	userID := primitive.NewObjectID()

	out, err := f.svc.Generate(context.Background(), watchURL, userID)
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", out.Title)
	assert.Equal(t, "dQw4w9WgXcQ", out.YoutubeVideoID)
	assert.False(t, out.ID.IsZero())
	assert.Equal(t, 1, f.db.ResourceCount())
	assert.Equal(t, 1, f.db.RecordCount())

	keys := f.artifacts.Keys()
	require.Len(t, keys, 2)
	var names []string
	for _, k := range keys {
		names = append(names, k[strings.LastIndex(k, "/")+1:])
	}
	assert.ElementsMatch(t, []string{"transcription-dQw4w9WgXcQ.txt", "summarization-dQw4w9WgXcQ.txt"}, names)

	// 5000 characters split at 1000 gives 5 chunks; only the first 3 reach the model
	require.Len(t, f.summarizer.Chunks, 1)
	assert.Len(t, f.summarizer.Chunks[0], 3)

	require.Len(t, f.media.AudioDirs(), 1)
	f.assertTempDirsRemoved(t)

	require.Len(t, f.events.Events, 1)
	assert.False(t, f.events.Events[0].Reused)
	assert.Equal(t, out.ID, f.events.Events[0].Record.ID)
}

func TestGenerateAcceptsShortLinks(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Generate(context.Background(), "https://youtu.be/dQw4w9WgXcQ", primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", out.YoutubeVideoID)
}

func TestGenerateSameVideoTwoUsersSharesResource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Generate(ctx, watchURL, primitive.NewObjectID())
	require.NoError(t, err)
	second, err := f.svc.Generate(ctx, "https://youtu.be/dQw4w9WgXcQ", primitive.NewObjectID())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, 1, f.db.ResourceCount())
	assert.Equal(t, 2, f.db.RecordCount())
	assert.Equal(t, 1, f.transcriber.Calls)
	assert.Len(t, f.artifacts.Keys(), 2)

	require.Len(t, f.events.Events, 2)
	assert.True(t, f.events.Events[1].Reused)
}

func TestGenerateSameUserTwiceAlreadyExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := f.svc.Generate(ctx, watchURL, userID)
	require.NoError(t, err)

	_, err = f.svc.Generate(ctx, watchURL, userID)
	requireKind(t, err, services.KindAlreadyExists)
	assert.Equal(t, 1, f.db.RecordCount())
	assert.Equal(t, 1, f.transcriber.Calls)
}

func TestGenerateRejectsInvalidURLs(t *testing.T) {
	for _, raw := range []string{"", "not a url", "https://vimeo.com/123", "https://www.youtube.com/watch", "https://youtu.be/"} {
		t.Run(raw, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Generate(context.Background(), raw, primitive.NewObjectID())
			requireKind(t, err, services.KindInvalidInput)

			var se *services.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, services.MsgInvalidURL, se.Message)
			assert.Zero(t, f.db.ResourceCount())
		})
	}
}

func TestGenerateUnavailableVideo(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), "https://youtu.be/missing0000", primitive.NewObjectID())
	requireKind(t, err, services.KindMediaUnavailable)
	assert.Empty(t, f.media.AudioDirs())
}

func TestGenerateVideoTooLong(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), "https://youtu.be/longvideo01", primitive.NewObjectID())
	requireKind(t, err, services.KindVideoTooLong)

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Video is too long (max 30 minutes)", se.Message)
	assert.Empty(t, f.media.AudioDirs())
	assert.Zero(t, f.transcriber.Calls)
	assert.Empty(t, f.artifacts.Keys())
	assert.Zero(t, f.db.ResourceCount())
}

func TestGenerateRejectsNonPositiveDuration(t *testing.T) {
	for _, id := range []string{"livestream0", "negative000"} {
		t.Run(id, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Generate(context.Background(), "https://youtu.be/"+id, primitive.NewObjectID())
			requireKind(t, err, services.KindMediaUnavailable)
			assert.Empty(t, f.media.AudioDirs())
			assert.Zero(t, f.transcriber.Calls)
			assert.Zero(t, f.db.ResourceCount())
		})
	}
}

func TestGenerateDownloadUnavailable(t *testing.T) {
	f := newFixture(t)
	f.media.AudioErr = fmt.Errorf("yt-dlp: %w", media.ErrUnavailable)

	_, err := f.svc.Generate(context.Background(), watchURL, primitive.NewObjectID())
	requireKind(t, err, services.KindMediaUnavailable)
	f.assertTempDirsRemoved(t)
}

func TestGenerateTranscriptionFailure(t *testing.T) {
	f := newFixture(t)
	f.transcriber.Err = errors.New("whisper down")

	_, err := f.svc.Generate(context.Background(), watchURL, primitive.NewObjectID())
	requireKind(t, err, services.KindTranscription)

	f.assertTempDirsRemoved(t)
	assert.Empty(t, f.artifacts.Keys())
	assert.Zero(t, f.db.ResourceCount())
	assert.Empty(t, f.events.Events)
}

func TestGenerateSummarizationFailureDeletesTranscript(t *testing.T) {
	f := newFixture(t)
	f.summarizer.Err = errors.New("model overloaded")

	_, err := f.svc.Generate(context.Background(), watchURL, primitive.NewObjectID())
	requireKind(t, err, services.KindSummarization)

	assert.Empty(t, f.artifacts.Keys())
	require.Len(t, f.artifacts.Deleted, 1)
	assert.Contains(t, f.artifacts.Deleted[0], "transcription-dQw4w9WgXcQ.txt")
	assert.Zero(t, f.db.ResourceCount())
	f.assertTempDirsRemoved(t)
}

func TestGenerateQuotaExceeded(t *testing.T) {
	f := newFixture(t)
	f.summarizer.Err = fmt.Errorf("map chunk 1: %w", summarizer.ErrQuotaExceeded)

	_, err := f.svc.Generate(context.Background(), watchURL, primitive.NewObjectID())
	requireKind(t, err, services.KindQuotaExceeded)
	assert.Empty(t, f.artifacts.Keys())
}

func TestGenerateStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.artifacts.StoreErr = errors.New("bucket unreachable")
	f.artifacts.FailOn = "summarization-"

	_, err := f.svc.Generate(context.Background(), watchURL, primitive.NewObjectID())
	requireKind(t, err, services.KindStorage)

	assert.Empty(t, f.artifacts.Keys())
	assert.Len(t, f.artifacts.Deleted, 1)
	assert.Zero(t, f.db.ResourceCount())
}

func TestGenerateDatabaseFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.db.RecordCreateErr = errors.New("write concern timeout")

	_, err := f.svc.Generate(context.Background(), watchURL, primitive.NewObjectID())
	requireKind(t, err, services.KindDatabase)

	assert.Equal(t, 1, f.tx.Calls)
	assert.Zero(t, f.db.ResourceCount(), "resource insert should be rolled back with the record")
	assert.Zero(t, f.db.RecordCount())
	assert.Empty(t, f.artifacts.Keys())
	assert.Len(t, f.artifacts.Deleted, 2)
	assert.Empty(t, f.events.Events)
}

func TestGenerateReusesResourceAfterLosingRace(t *testing.T) {
	f := newFixture(t)
	f.db.BeforeResourceCreate = func(_ context.Context, v models.VideoResource) {
		f.db.InsertResource(models.VideoResource{
			YoutubeVideoID:   v.YoutubeVideoID,
			Title:            "Winner title",
			TranscriptionKey: "winner/transcription-dQw4w9WgXcQ.txt",
			SummarizationKey: "winner/summarization-dQw4w9WgXcQ.txt",
		})
		f.db.BeforeResourceCreate = nil
	}
	userID := primitive.NewObjectID()

	out, err := f.svc.Generate(context.Background(), watchURL, userID)
	require.NoError(t, err)

	assert.Equal(t, "Winner title", out.Title)
	assert.Equal(t, 1, f.db.ResourceCount())
	assert.Equal(t, 1, f.db.RecordCount())

	rows, err := f.svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Winner title", rows[0].Title)

	// our uploads are dropped, the winner's keys are never touched
	assert.Len(t, f.artifacts.Deleted, 2)
	for _, key := range f.artifacts.Deleted {
		assert.NotContains(t, key, "winner/")
	}

	require.Len(t, f.events.Events, 1)
	assert.True(t, f.events.Events[0].Reused)
}

func TestGenerateRaceAgainstSameUserConflicts(t *testing.T) {
	f := newFixture(t)
	userID := primitive.NewObjectID()
	f.db.BeforeResourceCreate = func(_ context.Context, v models.VideoResource) {
		w := f.db.InsertResource(models.VideoResource{YoutubeVideoID: v.YoutubeVideoID, Title: "Winner"})
		f.db.InsertRecord(userID, w.ID)
		f.db.BeforeResourceCreate = nil
	}

	_, err := f.svc.Generate(context.Background(), watchURL, userID)
	requireKind(t, err, services.KindConflict)
	assert.Equal(t, 1, f.db.RecordCount())
	assert.Empty(t, f.artifacts.Keys())
}

func TestGenerateLookupFailure(t *testing.T) {
	f := newFixture(t)
	f.db.Err = errors.New("connection reset")

	_, err := f.svc.Generate(context.Background(), watchURL, primitive.NewObjectID())
	requireKind(t, err, services.KindDatabase)
	assert.Empty(t, f.media.AudioDirs())
}

func TestGeneratePublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.events.Err = errors.New("broker down")

	_, err := f.svc.Generate(context.Background(), watchURL, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, 1, f.db.RecordCount())
}

func TestListReturnsOnlyCallersRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	_, err := f.svc.Generate(ctx, watchURL, alice)
	require.NoError(t, err)
	f.db.InsertResource(models.VideoResource{YoutubeVideoID: "other000001", Title: "Other"})
	other, err := f.svc.Generate(ctx, "https://youtu.be/other000001", bob)
	require.NoError(t, err)

	rows, err := f.svc.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, other.ID, rows[0].ID)
	assert.Equal(t, "Other", rows[0].Title)

	rows, err = f.svc.List(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetResignsURLsAndHidesOtherUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	out, err := f.svc.Generate(ctx, watchURL, owner)
	require.NoError(t, err)

	item, err := f.svc.Get(ctx, owner, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", item.Title)
	assert.Equal(t, int64(213), item.DurationSeconds)
	assert.True(t, strings.HasSuffix(item.TranscriptionURL, "?sig=fresh"))
	assert.True(t, strings.HasSuffix(item.SummarizationURL, "?sig=fresh"))

	_, err = f.svc.Get(ctx, primitive.NewObjectID(), out.ID)
	requireKind(t, err, services.KindNotFound)

	_, err = f.svc.Get(ctx, owner, primitive.NewObjectID())
	requireKind(t, err, services.KindNotFound)
}

func TestGetFallsBackToStoredURLs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	out, err := f.svc.Generate(ctx, watchURL, owner)
	require.NoError(t, err)

	f.artifacts.SignErr = errors.New("no credentials")
	item, err := f.svc.Get(ctx, owner, out.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(item.SummarizationURL, "?sig=stored"))
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &services.Error{Kind: services.KindStorage, Message: services.MsgStorageFailed, Op: "X.Y", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "X.Y: Failed to store artifact: boom", err.Error())
	assert.Equal(t, services.KindInternal, services.KindOf(cause))
}
