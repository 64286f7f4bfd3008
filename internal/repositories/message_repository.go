package repositories

import (
	"context"
	"time"

	"github.com/lostfound/recovery/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	AppendMessage(ctx context.Context, message *models.Message) error
	ListAndMarkRead(ctx context.Context, conversationID, readerID uint, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID uint) (int64, error)
	GetMessagesForConversations(ctx context.Context, conversationIDs []uint) (map[uint][]models.Message, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// AppendMessage inserts the message and advances the conversation's
// last_message_at in the same transaction. The conversation row is locked so
// concurrent appends get strictly increasing timestamps.
func (r *PostgresMessageRepository) AppendMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conversation models.Conversation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&conversation, message.ConversationID).Error
		if err != nil {
			return err
		}

		now := time.Now().UTC().Truncate(time.Microsecond)
		if !now.After(conversation.LastMessageAt) {
			now = conversation.LastMessageAt.Add(time.Microsecond)
		}

		message.IsRead = false
		message.CreatedAt = now
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversation.ID).
			Update("last_message_at", now).Error
	})
}

// ListAndMarkRead marks every unread message not sent by readerID as read and
// then returns one page of the conversation, newest first. The page reflects
// the updated read flags.
func (r *PostgresMessageRepository) ListAndMarkRead(ctx context.Context, conversationID, readerID uint, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := markRead(tx, conversationID, readerID); err != nil {
			return err
		}

		q := tx.Where("conversation_id = ?", conversationID).
			Order("created_at DESC").Order("id DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		if offset > 0 {
			q = q.Offset(offset)
		}
		return q.Find(&messages).Error
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead marks every unread message not sent by readerID as read and
// returns how many changed
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, conversationID, readerID uint) (int64, error) {
	return markRead(r.db.WithContext(ctx), conversationID, readerID)
}

func markRead(tx *gorm.DB, conversationID, readerID uint) (int64, error) {
	res := tx.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// GetMessagesForConversations loads the full message log of several
// conversations grouped by conversation ID, oldest first
func (r *PostgresMessageRepository) GetMessagesForConversations(ctx context.Context, conversationIDs []uint) (map[uint][]models.Message, error) {
	grouped := make(map[uint][]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return grouped, nil
	}

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", conversationIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for _, m := range messages {
		grouped[m.ConversationID] = append(grouped[m.ConversationID], m)
	}
	return grouped, nil
}

// CountUnread counts unread messages addressed to userID across all of their conversations
func (r *PostgresMessageRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.user1_id = ? OR conversations.user2_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
