package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"yt-summary/models"
)

type ChatEntryRepository struct {
	col *mongo.Collection
}

func NewChatEntryRepository(db *mongo.Database) *ChatEntryRepository {
	return &ChatEntryRepository{col: db.Collection("chat_entries")}
}

func (r *ChatEntryRepository) Insert(ctx context.Context, e models.ChatEntry) (*models.ChatEntry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return &e, nil
}

// ListBySummarization returns the conversation oldest first.
func (r *ChatEntryRepository) ListBySummarization(ctx context.Context, summarizationID primitive.ObjectID) ([]models.ChatEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"summarization_id": summarizationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	entries := []models.ChatEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
