package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
)

// MessageNotifier is told about every committed message so the recipient can
// be alerted. Delivery itself happens outside this service.
type MessageNotifier interface {
	NotifyNewMessage(ctx context.Context, conversation *models.Conversation, message *models.Message, recipientID uint) error
}

// Notifiers fans a message out to every configured notifier
type Notifiers []MessageNotifier

// NotifyNewMessage calls every notifier and joins their errors
func (n Notifiers) NotifyNewMessage(ctx context.Context, conversation *models.Conversation, message *models.Message, recipientID uint) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.NotifyNewMessage(ctx, conversation, message, recipientID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

const previewRunes = 120

// OutboxNotifier records new-message events in the notification outbox
type OutboxNotifier struct {
	notificationRepository repositories.MessageNotificationRepository
}

// NewOutboxNotifier creates a new OutboxNotifier
func NewOutboxNotifier(notificationRepo repositories.MessageNotificationRepository) *OutboxNotifier {
	return &OutboxNotifier{notificationRepository: notificationRepo}
}

// NotifyNewMessage writes one undelivered event for the recipient
func (o *OutboxNotifier) NotifyNewMessage(ctx context.Context, conversation *models.Conversation, message *models.Message, recipientID uint) error {
	return o.notificationRepository.CreateNotification(ctx, &models.MessageNotification{
		EventID:        uuid.NewString(),
		RecipientID:    recipientID,
		SenderID:       message.SenderID,
		ConversationID: conversation.ID,
		PostID:         conversation.PostID,
		MessageID:      message.ID,
		Preview:        Preview(message.Content),
		CreatedAt:      message.CreatedAt,
	})
}

// Preview shortens message content for notification bodies
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewRunes-1]) + "…"
}
