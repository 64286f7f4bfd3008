package repositories_test

import (
	"context"
	"testing"

	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"github.com/lostfound/recovery/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type thread struct {
	db            *gorm.DB
	messages      *repositories.PostgresMessageRepository
	conversations *repositories.PostgresConversationRepository
	alice, bob    models.User
	conversation  *models.Conversation
}

func newThread(t *testing.T) *thread {
	t.Helper()
	db := testutil.NewDB(t)
	th := &thread{
		db:            db,
		messages:      repositories.NewPostgresMessageRepository(db),
		conversations: repositories.NewPostgresConversationRepository(db),
		alice:         testutil.CreateUser(t, db, "Alice"),
		bob:           testutil.CreateUser(t, db, "Bob"),
	}
	post := testutil.CreatePost(t, db, th.alice, "Lost wallet")
	th.conversation = &models.Conversation{PostID: post.ID, User1ID: th.bob.ID, User2ID: th.alice.ID}
	require.NoError(t, th.conversations.CreateConversation(context.Background(), th.conversation))
	return th
}

func (th *thread) send(t *testing.T, sender models.User, content string) *models.Message {
	t.Helper()
	m := &models.Message{ConversationID: th.conversation.ID, SenderID: sender.ID, Content: content}
	require.NoError(t, th.messages.AppendMessage(context.Background(), m))
	return m
}

func TestAppendMessageAdvancesConversationTimestamp(t *testing.T) {
	th := newThread(t)
	ctx := context.Background()

	before := th.conversation.LastMessageAt
	first := th.send(t, th.bob, "hi")
	second := th.send(t, th.bob, "are you there?")

	assert.True(t, first.CreatedAt.After(before))
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
	assert.False(t, second.IsRead)

	reloaded, err := th.conversations.GetConversationByID(ctx, th.conversation.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.LastMessageAt.Equal(second.CreatedAt))
}

func TestAppendMessageUnknownConversationWritesNothing(t *testing.T) {
	th := newThread(t)

	err := th.messages.AppendMessage(context.Background(), &models.Message{ConversationID: 9999, SenderID: th.bob.ID, Content: "hi"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, th.db.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListAndMarkReadFlipsOnlyOtherSendersMessages(t *testing.T) {
	th := newThread(t)
	ctx := context.Background()

	th.send(t, th.bob, "one")
	th.send(t, th.bob, "two")
	th.send(t, th.alice, "three")
	th.send(t, th.bob, "four")

	page, err := th.messages.ListAndMarkRead(ctx, th.conversation.ID, th.alice.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "four", page[0].Content)
	assert.Equal(t, "three", page[1].Content)
	assert.True(t, page[0].IsRead)
	assert.False(t, page[1].IsRead, "alice's own message is not marked by her read")

	var unreadFromBob int64
	require.NoError(t, th.db.Model(&models.Message{}).
		Where("sender_id = ? AND is_read = ?", th.bob.ID, false).Count(&unreadFromBob).Error)
	assert.Zero(t, unreadFromBob, "messages outside the page are marked too")
}

func TestMarkReadAndCountUnread(t *testing.T) {
	th := newThread(t)
	ctx := context.Background()

	th.send(t, th.bob, "one")
	th.send(t, th.bob, "two")
	th.send(t, th.alice, "three")

	n, err := th.messages.CountUnread(ctx, th.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = th.messages.CountUnread(ctx, th.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	changed, err := th.messages.MarkRead(ctx, th.conversation.ID, th.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	n, err = th.messages.CountUnread(ctx, th.alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetMessagesForConversationsOldestFirst(t *testing.T) {
	th := newThread(t)

	th.send(t, th.bob, "one")
	th.send(t, th.alice, "two")
	th.send(t, th.bob, "three")

	grouped, err := th.messages.GetMessagesForConversations(context.Background(), []uint{th.conversation.ID})
	require.NoError(t, err)
	require.Len(t, grouped[th.conversation.ID], 3)
	assert.Equal(t, "one", grouped[th.conversation.ID][0].Content)
	assert.Equal(t, "three", grouped[th.conversation.ID][2].Content)
}
