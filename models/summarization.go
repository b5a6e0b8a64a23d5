package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Summarization links a user to a VideoResource. (user_id, video_resource_id) is unique.
// Collection: summarizations
type Summarization struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	VideoResourceID primitive.ObjectID `bson:"video_resource_id" json:"video_resource_id"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// SummarizationWithResource is the joined read used for listings.
type SummarizationWithResource struct {
	Summarization `bson:",inline"`
	Resource      VideoResource `bson:"resource" json:"resource"`
}
