package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lostfound/recovery/backend/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateConversation is returned when a conversation for the same post
// and participant pair already exists
var ErrDuplicateConversation = errors.New("conversation already exists for this post and participant pair")

// ConversationRepository defines the interface for conversation data operations
type ConversationRepository interface {
	FindByParticipants(ctx context.Context, postID, userA, userB uint) (*models.Conversation, error)
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	GetConversationByID(ctx context.Context, id uint) (*models.Conversation, error)
	GetUserConversations(ctx context.Context, userID uint) ([]models.Conversation, error)
}

// PostgresConversationRepository implements ConversationRepository for PostgreSQL
type PostgresConversationRepository struct {
	db *gorm.DB
}

// NewPostgresConversationRepository creates a new PostgresConversationRepository
func NewPostgresConversationRepository(db *gorm.DB) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

// FindByParticipants looks up the conversation for postID between userA and
// userB in either order
func (r *PostgresConversationRepository) FindByParticipants(ctx context.Context, postID, userA, userB uint) (*models.Conversation, error) {
	low, high := models.ParticipantPair(userA, userB)

	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_low_id = ? AND user_high_id = ?", postID, low, high).
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// CreateConversation inserts a conversation keeping the caller's participant
// order. It returns ErrDuplicateConversation when the identity index rejects it.
func (r *PostgresConversationRepository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	conversation.UserLowID, conversation.UserHighID = models.ParticipantPair(conversation.User1ID, conversation.User2ID)
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	err := r.db.WithContext(ctx).Create(conversation).Error
	if isUniqueViolation(err) {
		return ErrDuplicateConversation
	}
	return err
}

// GetConversationByID retrieves a conversation by ID
func (r *PostgresConversationRepository) GetConversationByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetUserConversations lists the conversations userID takes part in, most
// recent activity first
func (r *PostgresConversationRepository) GetUserConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("last_message_at DESC").Order("id DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// isUniqueViolation recognizes unique index violations from the translated
// GORM error or the raw PostgreSQL SQLSTATE
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
