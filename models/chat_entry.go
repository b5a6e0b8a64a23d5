package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatEntry is one question/answer exchange about a summarization.
// Collection: chat_entries
type ChatEntry struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SummarizationID primitive.ObjectID `bson:"summarization_id" json:"summarization_id"`
	InputText       string             `bson:"input_text" json:"input_text"`
	OutputText      string             `bson:"output_text" json:"output_text"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}
