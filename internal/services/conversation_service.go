package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"gorm.io/gorm"
)

// ConversationService owns conversation identity: one conversation per post
// and unordered pair of users
type ConversationService struct {
	conversationRepository repositories.ConversationRepository
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	logger                 *log.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	conversationRepo repositories.ConversationRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	logger *log.Logger,
) *ConversationService {
	if logger == nil {
		logger = log.Default()
	}
	return &ConversationService{
		conversationRepository: conversationRepo,
		postRepository:         postRepo,
		userRepository:         userRepo,
		logger:                 logger,
	}
}

// GetOrCreate returns the conversation between userA and userB about postID,
// creating it on first contact. Calls with the pair in either order resolve to
// the same conversation; a concurrent insert that loses the race returns the
// winner's row.
func (s *ConversationService) GetOrCreate(ctx context.Context, postID, userA, userB uint) (*models.Conversation, error) {
	if postID == 0 {
		return nil, invalid("post_id", "is required")
	}
	if userA == 0 || userB == 0 {
		return nil, invalid("participants", "both user ids are required")
	}
	if userA == userB {
		return nil, invalid("participants", "a conversation needs two distinct users")
	}

	if _, err := s.postRepository.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("post", postID)
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	found, err := s.userRepository.FindExistingIDs(ctx, []uint{userA, userB})
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	if missing := missingIDs([]uint{userA, userB}, found); len(missing) > 0 {
		return nil, notFound("user", missing...)
	}

	existing, err := s.conversationRepository.FindByParticipants(ctx, postID, userA, userB)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	conversation := &models.Conversation{
		PostID:  postID,
		User1ID: userA,
		User2ID: userB,
	}
	err = s.conversationRepository.CreateConversation(ctx, conversation)
	if err == nil {
		s.logger.Debug("conversation created", "conversation_id", conversation.ID, "post_id", postID)
		return conversation, nil
	}
	if !errors.Is(err, repositories.ErrDuplicateConversation) {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	winner, err := s.conversationRepository.FindByParticipants(ctx, postID, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("%w: conversation for post %d was created concurrently but could not be re-read: %v", ErrConflict, postID, err)
	}
	return winner, nil
}

// Authorize loads a conversation and checks that userID takes part in it
func (s *ConversationService) Authorize(ctx context.Context, conversationID, userID uint) (*models.Conversation, error) {
	return loadParticipantConversation(ctx, s.conversationRepository, conversationID, userID)
}

func loadParticipantConversation(ctx context.Context, repo repositories.ConversationRepository, conversationID, userID uint) (*models.Conversation, error) {
	conversation, err := repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("conversation", conversationID)
		}
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if !conversation.HasParticipant(userID) {
		return nil, accessDenied(conversationID, userID)
	}
	return conversation, nil
}

// missingIDs returns the ids in want that are absent from found, keeping order
func missingIDs(want, found []uint) []uint {
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uint
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
