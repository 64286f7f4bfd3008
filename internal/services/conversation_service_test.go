package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"github.com/lostfound/recovery/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newConversationService(db *gorm.DB, convRepo repositories.ConversationRepository) *ConversationService {
	if convRepo == nil {
		convRepo = repositories.NewPostgresConversationRepository(db)
	}
	return NewConversationService(convRepo, repositories.NewPostgresPostRepository(db), repositories.NewPostgresUserRepository(db), nil)
}

func TestGetOrCreateIsIdempotentInEitherOrder(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newConversationService(db, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")
	bob := testutil.CreateUser(t, db, "Bob")
	post := testutil.CreatePost(t, db, alice, "Lost wallet")

	first, err := svc.GetOrCreate(ctx, post.ID, bob.ID, alice.ID)
	require.NoError(t, err)
	again, err := svc.GetOrCreate(ctx, post.ID, bob.ID, alice.ID)
	require.NoError(t, err)
	swapped, err := svc.GetOrCreate(ctx, post.ID, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.ID, swapped.ID)
	assert.Equal(t, bob.ID, swapped.User1ID, "stored order is the first caller's")

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateRejectsBadParticipants(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newConversationService(db, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")
	post := testutil.CreatePost(t, db, alice, "Lost wallet")

	_, err := svc.GetOrCreate(ctx, post.ID, alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetOrCreate(ctx, post.ID, 0, alice.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetOrCreate(ctx, 0, alice.ID, 42)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetOrCreateReportsMissingPostAndUsers(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newConversationService(db, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")
	bob := testutil.CreateUser(t, db, "Bob")
	post := testutil.CreatePost(t, db, alice, "Lost wallet")

	_, err := svc.GetOrCreate(ctx, 9999, alice.ID, bob.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "post", nf.Resource)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetOrCreate(ctx, post.ID, alice.ID, 777)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Resource)
	assert.Equal(t, []uint{777}, nf.IDs)

	_, err = svc.GetOrCreate(ctx, post.ID, 777, 778)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []uint{777, 778}, nf.IDs)
	assert.Equal(t, "users with ids 777, 778 not found", nf.Error())
}

// lateConversationRepository misses its first lookup so the service goes on to
// insert a row another writer has already created
type lateConversationRepository struct {
	repositories.ConversationRepository
	lookups int
}

func (r *lateConversationRepository) FindByParticipants(ctx context.Context, postID, userA, userB uint) (*models.Conversation, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.ConversationRepository.FindByParticipants(ctx, postID, userA, userB)
}

func TestGetOrCreateLosingRaceReturnsWinner(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	store := repositories.NewPostgresConversationRepository(db)

	alice := testutil.CreateUser(t, db, "Alice")
	bob := testutil.CreateUser(t, db, "Bob")
	post := testutil.CreatePost(t, db, alice, "Lost wallet")

	winner := &models.Conversation{PostID: post.ID, User1ID: alice.ID, User2ID: bob.ID}
	require.NoError(t, store.CreateConversation(ctx, winner))

	late := &lateConversationRepository{ConversationRepository: store}
	svc := newConversationService(db, late)

	got, err := svc.GetOrCreate(ctx, post.ID, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, 2, late.lookups)
}

type failingRereadRepository struct {
	repositories.ConversationRepository
}

func (failingRereadRepository) FindByParticipants(context.Context, uint, uint, uint) (*models.Conversation, error) {
	return nil, gorm.ErrRecordNotFound
}

func (failingRereadRepository) CreateConversation(context.Context, *models.Conversation) error {
	return repositories.ErrDuplicateConversation
}

func TestGetOrCreateConflictWhenWinnerCannotBeRead(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newConversationService(db, failingRereadRepository{})

	alice := testutil.CreateUser(t, db, "Alice")
	bob := testutil.CreateUser(t, db, "Bob")
	post := testutil.CreatePost(t, db, alice, "Lost wallet")

	_, err := svc.GetOrCreate(context.Background(), post.ID, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestAuthorize(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newConversationService(db, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")
	bob := testutil.CreateUser(t, db, "Bob")
	carol := testutil.CreateUser(t, db, "Carol")
	post := testutil.CreatePost(t, db, alice, "Lost wallet")

	conversation, err := svc.GetOrCreate(ctx, post.ID, bob.ID, alice.ID)
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, conversation.ID, alice.ID)
	assert.NoError(t, err)
	_, err = svc.Authorize(ctx, conversation.ID, carol.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.Authorize(ctx, 9999, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
