// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message between two users. Bodies are sanitized
// before storage.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID    primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Subject     string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Body        string             `bson:"body" json:"body"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
