package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
)

// DefaultMessagePageSize is the thread page size used when none is given
const DefaultMessagePageSize = 50

// MessageService is the per-conversation message log and its read receipts
type MessageService struct {
	conversationRepository repositories.ConversationRepository
	messageRepository      repositories.MessageRepository
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notifier               MessageNotifier
	logger                 *log.Logger
}

// NewMessageService creates a new MessageService. notifier may be nil.
func NewMessageService(
	conversationRepo repositories.ConversationRepository,
	messageRepo repositories.MessageRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notifier MessageNotifier,
	logger *log.Logger,
) *MessageService {
	if logger == nil {
		logger = log.Default()
	}
	return &MessageService{
		conversationRepository: conversationRepo,
		messageRepository:      messageRepo,
		postRepository:         postRepo,
		userRepository:         userRepo,
		notifier:               notifier,
		logger:                 logger,
	}
}

// Append adds a message from senderID and advances the conversation's
// last-message timestamp atomically. The notifier runs after commit; its
// failures are logged and do not fail the append.
func (s *MessageService) Append(ctx context.Context, conversationID, senderID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content", "must not be empty")
	}

	conversation, err := loadParticipantConversation(ctx, s.conversationRepository, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.messageRepository.AppendMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	conversation.LastMessageAt = message.CreatedAt

	if s.notifier != nil {
		recipientID, _ := conversation.OtherParticipant(senderID)
		if err := s.notifier.NotifyNewMessage(ctx, conversation, message, recipientID); err != nil {
			s.logger.Warn("message notification failed",
				"conversation_id", conversationID, "message_id", message.ID, "err", err)
		}
	}
	return message, nil
}

// ListAndMarkRead returns a page of the thread newest first. As a side effect
// every message addressed to viewerID in the conversation, not just the page,
// becomes read; the returned page already shows the new flags.
func (s *MessageService) ListAndMarkRead(ctx context.Context, conversationID, viewerID uint, limit, offset int) ([]models.Message, error) {
	if limit < 0 {
		return nil, invalid("limit", "must not be negative")
	}
	if offset < 0 {
		return nil, invalid("offset", "must not be negative")
	}
	if limit == 0 {
		limit = DefaultMessagePageSize
	}

	if _, err := loadParticipantConversation(ctx, s.conversationRepository, conversationID, viewerID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepository.ListAndMarkRead(ctx, conversationID, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// MarkRead applies the read transition without returning messages
func (s *MessageService) MarkRead(ctx context.Context, conversationID, viewerID uint) error {
	if _, err := loadParticipantConversation(ctx, s.conversationRepository, conversationID, viewerID); err != nil {
		return err
	}

	n, err := s.messageRepository.MarkRead(ctx, conversationID, viewerID)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	s.logger.Debug("messages marked read", "conversation_id", conversationID, "count", n)
	return nil
}

// ListConversations returns every conversation userID takes part in, most
// recently active first. Each entry carries its whole message log oldest
// first, the post projection and the other participant.
func (s *MessageService) ListConversations(ctx context.Context, userID uint) ([]models.ConversationSummary, error) {
	conversations, err := s.conversationRepository.GetUserConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	summaries := make([]models.ConversationSummary, len(conversations))
	if len(conversations) == 0 {
		return summaries, nil
	}

	conversationIDs := make([]uint, len(conversations))
	postIDs := make([]uint, 0, len(conversations))
	otherIDs := make([]uint, 0, len(conversations))
	for i, c := range conversations {
		conversationIDs[i] = c.ID
		postIDs = append(postIDs, c.PostID)
		if other, ok := c.OtherParticipant(userID); ok {
			otherIDs = append(otherIDs, other)
		}
	}

	messages, err := s.messageRepository.GetMessagesForConversations(ctx, conversationIDs)
	if err != nil {
		return nil, fmt.Errorf("load conversation messages: %w", err)
	}
	posts, err := s.postRepository.GetCompactPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load conversation posts: %w", err)
	}
	users, err := s.userRepository.GetCompactUsers(ctx, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("load conversation participants: %w", err)
	}

	for i, c := range conversations {
		other, _ := c.OtherParticipant(userID)
		thread := messages[c.ID]
		if thread == nil {
			thread = []models.Message{}
		}
		summaries[i] = models.ConversationSummary{
			Conversation: c,
			Messages:     thread,
			Post:         posts[c.PostID],
			OtherUser:    users[other],
		}
	}
	return summaries, nil
}

// UnreadCount counts messages addressed to userID that are still unread
func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	n, err := s.messageRepository.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return n, nil
}
