package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageNotification is a new-message event written to the MongoDB outbox.
// The push service consumes undelivered events; this backend only produces them.
type MessageNotification struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EventID        string             `json:"event_id" bson:"event_id"`
	RecipientID    uint               `json:"recipient_id" bson:"recipient_id"`
	SenderID       uint               `json:"sender_id" bson:"sender_id"`
	ConversationID uint               `json:"conversation_id" bson:"conversation_id"`
	PostID         uint               `json:"post_id" bson:"post_id"`
	MessageID      uint               `json:"message_id" bson:"message_id"`
	Preview        string             `json:"preview" bson:"preview"`
	Delivered      bool               `json:"delivered" bson:"delivered"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}
