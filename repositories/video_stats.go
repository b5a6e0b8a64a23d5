package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// recentEventWindow bounds the per-video list of event ids kept for redelivery checks.
const recentEventWindow = 200

// VideoStatsRepository keeps request analytics next to, not inside, video_resources.
type VideoStatsRepository struct {
	col *mongo.Collection
}

func NewVideoStatsRepository(db *mongo.Database) *VideoStatsRepository {
	return &VideoStatsRepository{col: db.Collection("video_stats")}
}

// RecordRequest counts one summarization request for the resource. It reports false when
// eventID was already counted, so a redelivered event leaves the counter unchanged.
func (r *VideoStatsRepository) RecordRequest(ctx context.Context, resourceID primitive.ObjectID, videoID, eventID string) (bool, error) {
	filter := bson.M{"_id": resourceID, "recent_event_ids": bson.M{"$ne": eventID}}
	update := bson.M{
		"$inc": bson.M{"request_count": 1},
		"$set": bson.M{"youtube_video_id": videoID, "last_requested_at": time.Now()},
		"$push": bson.M{"recent_event_ids": bson.M{
			"$each":  bson.A{eventID},
			"$slice": -recentEventWindow,
		}},
	}

	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err == nil {
		return true, nil
	}
	if !errors.Is(translate(err), ErrDuplicate) {
		return false, err
	}

	// The upsert collides on _id either because the event is already listed or because a
	// concurrent first request created the document. Only the second case still matches.
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
