package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"yt-summary/models"
)

type VideoResourceRepository struct {
	col *mongo.Collection
}

func NewVideoResourceRepository(db *mongo.Database) *VideoResourceRepository {
	return &VideoResourceRepository{col: db.Collection("video_resources")}
}

// FindByYoutubeVideoID returns ErrNotFound when the video was never processed.
func (r *VideoResourceRepository) FindByYoutubeVideoID(ctx context.Context, videoID string) (*models.VideoResource, error) {
	var v models.VideoResource
	if err := r.col.FindOne(ctx, bson.M{"youtube_video_id": videoID}).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *VideoResourceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VideoResource, error) {
	var v models.VideoResource
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// Create inserts a new resource. The document is never updated afterwards. A second
// insert for the same youtube_video_id fails with ErrDuplicate through the unique index.
func (r *VideoResourceRepository) Create(ctx context.Context, v models.VideoResource) (*models.VideoResource, error) {
	v.ID = primitive.NilObjectID
	v.CreatedAt = time.Now()

	res, err := r.col.InsertOne(ctx, v)
	if err != nil {
		return nil, translate(err)
	}
	v.ID = res.InsertedID.(primitive.ObjectID)
	return &v, nil
}
