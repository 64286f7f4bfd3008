package repositories

import (
	"context"

	"github.com/lostfound/recovery/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the read side of the user store this backend needs.
// CreateUser exists for seeding; accounts are owned by the auth service.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	FindExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
	GetCompactUsers(ctx context.Context, ids []uint) (map[uint]models.UserCompact, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindExistingIDs returns the subset of ids that belong to existing users
func (r *PostgresUserRepository) FindExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// GetCompactUsers loads the public projection of several users keyed by ID
func (r *PostgresUserRepository) GetCompactUsers(ctx context.Context, ids []uint) (map[uint]models.UserCompact, error) {
	compact := make(map[uint]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return compact, nil
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Select("id", "first_name", "last_name").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		compact[users[i].ID] = users[i].ToCompact()
	}
	return compact, nil
}
