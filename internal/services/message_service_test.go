package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"github.com/lostfound/recovery/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type notification struct {
	conversationID uint
	messageID      uint
	recipientID    uint
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (r *recordingNotifier) NotifyNewMessage(_ context.Context, conversation *models.Conversation, message *models.Message, recipientID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notification{conversation.ID, message.ID, recipientID})
	return r.err
}

type inbox struct {
	db           *gorm.DB
	messages     *MessageService
	notifier     *recordingNotifier
	alice, bob   models.User
	carol        models.User
	post         models.Post
	conversation *models.Conversation
}

func newInbox(t *testing.T) *inbox {
	t.Helper()
	db := testutil.NewDB(t)
	convRepo := repositories.NewPostgresConversationRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)
	notifier := &recordingNotifier{}

	in := &inbox{
		db:       db,
		messages: NewMessageService(convRepo, repositories.NewPostgresMessageRepository(db), postRepo, userRepo, notifier, nil),
		notifier: notifier,
		alice:    testutil.CreateUser(t, db, "Alice"),
		bob:      testutil.CreateUser(t, db, "Bob"),
		carol:    testutil.CreateUser(t, db, "Carol"),
	}
	in.post = testutil.CreatePost(t, db, in.alice, "Lost wallet")

	conversation, err := NewConversationService(convRepo, postRepo, userRepo, nil).
		GetOrCreate(context.Background(), in.post.ID, in.bob.ID, in.alice.ID)
	require.NoError(t, err)
	in.conversation = conversation
	return in
}

func (in *inbox) send(t *testing.T, sender models.User, content string) *models.Message {
	t.Helper()
	m, err := in.messages.Append(context.Background(), in.conversation.ID, sender.ID, content)
	require.NoError(t, err)
	return m
}

func TestAppendAdvancesLastMessageAt(t *testing.T) {
	in := newInbox(t)

	var previous = in.conversation.LastMessageAt
	for _, content := range []string{"hi", "I think I found it", "where?"} {
		m := in.send(t, in.bob, content)
		assert.True(t, m.CreatedAt.After(previous))
		assert.False(t, m.IsRead)
		previous = m.CreatedAt
	}

	var stored models.Conversation
	require.NoError(t, in.db.First(&stored, in.conversation.ID).Error)
	assert.True(t, stored.LastMessageAt.Equal(previous))
}

func TestAppendNotifiesOtherParticipant(t *testing.T) {
	in := newInbox(t)

	fromBob := in.send(t, in.bob, "hi")
	fromAlice := in.send(t, in.alice, "hello")

	require.Len(t, in.notifier.sent, 2)
	assert.Equal(t, notification{in.conversation.ID, fromBob.ID, in.alice.ID}, in.notifier.sent[0])
	assert.Equal(t, notification{in.conversation.ID, fromAlice.ID, in.bob.ID}, in.notifier.sent[1])
}

func TestAppendSurvivesNotifierFailure(t *testing.T) {
	in := newInbox(t)
	in.notifier.err = errors.New("push gateway down")

	m, err := in.messages.Append(context.Background(), in.conversation.ID, in.bob.ID, "hi")
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
}

func TestAppendRejectsOutsidersAndBlankContent(t *testing.T) {
	in := newInbox(t)
	ctx := context.Background()

	_, err := in.messages.Append(ctx, in.conversation.ID, in.carol.ID, "let me in")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = in.messages.Append(ctx, in.conversation.ID, in.bob.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = in.messages.Append(ctx, 9999, in.bob.ID, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, in.db.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, in.notifier.sent)
}

func TestListAndMarkRead(t *testing.T) {
	in := newInbox(t)
	ctx := context.Background()

	in.send(t, in.bob, "one")
	in.send(t, in.alice, "two")
	in.send(t, in.bob, "three")

	page, err := in.messages.ListAndMarkRead(ctx, in.conversation.ID, in.alice.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []string{"three", "two", "one"}, []string{page[0].Content, page[1].Content, page[2].Content})
	for _, m := range page {
		assert.Equal(t, m.SenderID == in.bob.ID, m.IsRead, "message %q", m.Content)
	}

	n, err := in.messages.UnreadCount(ctx, in.alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = in.messages.UnreadCount(ctx, in.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = in.messages.ListAndMarkRead(ctx, in.conversation.ID, in.carol.ID, 0, 0)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = in.messages.ListAndMarkRead(ctx, in.conversation.ID, in.alice.ID, -1, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListAndMarkReadEmptyThread(t *testing.T) {
	in := newInbox(t)

	page, err := in.messages.ListAndMarkRead(context.Background(), in.conversation.ID, in.bob.ID, 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestMarkRead(t *testing.T) {
	in := newInbox(t)
	ctx := context.Background()

	in.send(t, in.alice, "did you find it?")
	in.send(t, in.alice, "hello?")

	require.NoError(t, in.messages.MarkRead(ctx, in.conversation.ID, in.bob.ID))
	n, err := in.messages.UnreadCount(ctx, in.bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, in.messages.MarkRead(ctx, in.conversation.ID, in.carol.ID), ErrAccessDenied)
	assert.ErrorIs(t, in.messages.MarkRead(ctx, 9999, in.bob.ID), ErrNotFound)
}

func TestListConversationsMostRecentFirst(t *testing.T) {
	in := newInbox(t)
	ctx := context.Background()

	keys := testutil.CreatePost(t, in.db, in.carol, "Found keys", testutil.WithType(models.PostTypeFound))
	convRepo := repositories.NewPostgresConversationRepository(in.db)
	other, err := NewConversationService(convRepo, repositories.NewPostgresPostRepository(in.db), repositories.NewPostgresUserRepository(in.db), nil).
		GetOrCreate(ctx, keys.ID, in.bob.ID, in.carol.ID)
	require.NoError(t, err)

	in.send(t, in.alice, "first thread")
	_, err = in.messages.Append(ctx, other.ID, in.carol.ID, "second thread")
	require.NoError(t, err)

	summaries, err := in.messages.ListConversations(ctx, in.bob.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, other.ID, summaries[0].ID)
	assert.Equal(t, "Carol", summaries[0].OtherUser.FirstName)
	assert.Equal(t, models.PostCompact{ID: keys.ID, Title: "Found keys", Type: models.PostTypeFound}, summaries[0].Post)
	require.Len(t, summaries[0].Messages, 1)

	assert.Equal(t, in.conversation.ID, summaries[1].ID)
	assert.Equal(t, "Alice", summaries[1].OtherUser.FirstName)

	mine, err := in.messages.ListConversations(ctx, in.alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Bob", mine[0].OtherUser.FirstName)

	none, err := in.messages.ListConversations(ctx, 4242)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListConversationsWithoutMessagesHasEmptyThread(t *testing.T) {
	in := newInbox(t)

	summaries, err := in.messages.ListConversations(context.Background(), in.alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.NotNil(t, summaries[0].Messages)
	assert.Empty(t, summaries[0].Messages)
}

func TestNotifiersJoinErrors(t *testing.T) {
	ok := &recordingNotifier{}
	broken := &recordingNotifier{err: errors.New("boom")}

	err := Notifiers{broken, ok}.NotifyNewMessage(context.Background(), &models.Conversation{ID: 1}, &models.Message{ID: 2}, 3)
	assert.EqualError(t, err, "boom")
	assert.Len(t, ok.sent, 1, "a failing notifier does not stop the rest")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))

	long := strings.Repeat("é", 200)
	got := Preview(long)
	assert.Equal(t, 120, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
