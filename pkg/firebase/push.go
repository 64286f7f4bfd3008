package firebase

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"firebase.google.com/go/v4/messaging"
	"github.com/lostfound/recovery/backend/internal/models"
)

// Sender is the part of *messaging.Client the push notifier needs
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

const pushBodyRunes = 120

// PushNotifier sends an FCM message to the recipient's topic for every new
// chat message. Devices subscribe to UserTopic(id) after signing in.
type PushNotifier struct {
	sender Sender
}

// NewPushNotifier creates a PushNotifier
func NewPushNotifier(sender Sender) *PushNotifier {
	return &PushNotifier{sender: sender}
}

// UserTopic is the FCM topic a user's devices subscribe to
func UserTopic(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}

// NotifyNewMessage pushes the message preview to the recipient
func (p *PushNotifier) NotifyNewMessage(ctx context.Context, conversation *models.Conversation, message *models.Message, recipientID uint) error {
	_, err := p.sender.Send(ctx, &messaging.Message{
		Topic: UserTopic(recipientID),
		Notification: &messaging.Notification{
			Title: "New message",
			Body:  truncate(message.Content, pushBodyRunes),
		},
		Data: map[string]string{
			"type":            "new_message",
			"conversation_id": strconv.FormatUint(uint64(conversation.ID), 10),
			"post_id":         strconv.FormatUint(uint64(conversation.PostID), 10),
			"message_id":      strconv.FormatUint(uint64(message.ID), 10),
			"sender_id":       strconv.FormatUint(uint64(message.SenderID), 10),
		},
	})
	if err != nil {
		return fmt.Errorf("fcm send to %s: %w", UserTopic(recipientID), err)
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
