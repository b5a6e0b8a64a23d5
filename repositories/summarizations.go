package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"yt-summary/models"
)

type SummarizationRepository struct {
	col *mongo.Collection
}

func NewSummarizationRepository(db *mongo.Database) *SummarizationRepository {
	return &SummarizationRepository{col: db.Collection("summarizations")}
}

// Create fails with ErrDuplicate when the user already owns a record for the resource.
func (r *SummarizationRepository) Create(ctx context.Context, userID, videoResourceID primitive.ObjectID) (*models.Summarization, error) {
	s := models.Summarization{
		UserID:          userID,
		VideoResourceID: videoResourceID,
		CreatedAt:       time.Now(),
	}
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return nil, translate(err)
	}
	s.ID = res.InsertedID.(primitive.ObjectID)
	return &s, nil
}

func (r *SummarizationRepository) Exists(ctx context.Context, userID, videoResourceID primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID, "video_resource_id": videoResourceID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SummarizationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Summarization, error) {
	var s models.Summarization
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// ListByUser joins every record of the user with its video resource. No order is implied.
func (r *SummarizationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.SummarizationWithResource, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "video_resources",
			"localField":   "video_resource_id",
			"foreignField": "_id",
			"as":           "resource",
		}}},
		{{Key: "$unwind", Value: "$resource"}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.SummarizationWithResource{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
