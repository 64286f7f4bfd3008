package models

import "time"

// Conversation is the private thread between two users about one post.
// User1ID/User2ID keep the order the conversation was opened with; the
// normalized UserLowID/UserHighID pair backs the unique identity index so
// {A,B} and {B,A} resolve to the same row.
type Conversation struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	PostID        uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_conversation_identity,priority:1"`
	User1ID       uint      `json:"user1_id" gorm:"not null;index"`
	User2ID       uint      `json:"user2_id" gorm:"not null;index"`
	UserLowID     uint      `json:"-" gorm:"not null;uniqueIndex:idx_conversation_identity,priority:2"`
	UserHighID    uint      `json:"-" gorm:"not null;uniqueIndex:idx_conversation_identity,priority:3"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"`

	PostRef  *Post `json:"-" gorm:"foreignKey:PostID"`
	User1Ref *User `json:"-" gorm:"foreignKey:User1ID"`
	User2Ref *User `json:"-" gorm:"foreignKey:User2ID"`
}

// ParticipantPair orders two user ids so the pair is independent of call order
func ParticipantPair(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether userID is one of the two participants
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the participant that is not viewerID. The second
// result is false when viewerID is not part of the conversation.
func (c *Conversation) OtherParticipant(viewerID uint) (uint, bool) {
	switch viewerID {
	case c.User1ID:
		return c.User2ID, true
	case c.User2ID:
		return c.User1ID, true
	}
	return 0, false
}

// ConversationSummary is one entry of a user's conversation list
type ConversationSummary struct {
	Conversation
	Messages  []Message   `json:"messages"`
	Post      PostCompact `json:"post"`
	OtherUser UserCompact `json:"other_user"`
}

// CreateConversationRequest opens (or reopens) a conversation with another user over a post
type CreateConversationRequest struct {
	PostID      uint `json:"post_id" validate:"required"`
	OtherUserID uint `json:"other_user_id" validate:"required"`
}
