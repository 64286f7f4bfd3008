package models

import "time"

// Message is an append-only entry in a conversation. IsRead only ever moves
// from false to true, when the recipient views the conversation.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;index:idx_messages_conversation_created,priority:1"`
	SenderID       uint      `json:"sender_id" gorm:"not null;index"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	IsRead         bool      `json:"is_read" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_messages_conversation_created,priority:2"`

	ConversationRef *Conversation `json:"-" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	SenderRef       *User         `json:"-" gorm:"foreignKey:SenderID"`
}

// SendMessageRequest defines the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}
