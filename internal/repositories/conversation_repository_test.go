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

func TestCreateConversationRejectsSwappedDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresConversationRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")
	bob := testutil.CreateUser(t, db, "Bob")
	post := testutil.CreatePost(t, db, alice, "Lost wallet")

	first := &models.Conversation{PostID: post.ID, User1ID: bob.ID, User2ID: alice.ID}
	require.NoError(t, repo.CreateConversation(ctx, first))
	assert.Equal(t, bob.ID, first.User1ID, "caller order is kept")
	assert.False(t, first.LastMessageAt.IsZero())

	dup := &models.Conversation{PostID: post.ID, User1ID: alice.ID, User2ID: bob.ID}
	assert.ErrorIs(t, repo.CreateConversation(ctx, dup), repositories.ErrDuplicateConversation)

	found, err := repo.FindByParticipants(ctx, post.ID, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestCreateConversationSamePairOtherPost(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresConversationRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")
	bob := testutil.CreateUser(t, db, "Bob")
	wallet := testutil.CreatePost(t, db, alice, "Lost wallet")
	keys := testutil.CreatePost(t, db, alice, "Lost keys")

	require.NoError(t, repo.CreateConversation(ctx, &models.Conversation{PostID: wallet.ID, User1ID: bob.ID, User2ID: alice.ID}))
	require.NoError(t, repo.CreateConversation(ctx, &models.Conversation{PostID: keys.ID, User1ID: bob.ID, User2ID: alice.ID}))

	_, err := repo.FindByParticipants(ctx, 9999, alice.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetUserConversationsIncludesBothSides(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresConversationRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")
	bob := testutil.CreateUser(t, db, "Bob")
	carol := testutil.CreateUser(t, db, "Carol")
	post := testutil.CreatePost(t, db, alice, "Lost wallet")

	asFirst := &models.Conversation{PostID: post.ID, User1ID: alice.ID, User2ID: bob.ID}
	asSecond := &models.Conversation{PostID: post.ID, User1ID: carol.ID, User2ID: alice.ID}
	require.NoError(t, repo.CreateConversation(ctx, asFirst))
	require.NoError(t, repo.CreateConversation(ctx, asSecond))

	conversations, err := repo.GetUserConversations(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, conversations, 2)

	conversations, err = repo.GetUserConversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, asFirst.ID, conversations[0].ID)
}
