// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with the given first name
func CreateUser(t *testing.T, db *gorm.DB, firstName string) models.User {
	t.Helper()
	user := models.User{
		Email:     fmt.Sprintf("%s-%s@example.com", firstName, uuid.NewString()[:8]),
		FirstName: firstName,
		LastName:  "Tester",
	}
	require.NoError(t, repositories.NewPostgresUserRepository(db).CreateUser(context.Background(), &user))
	return user
}

// PostOption adjusts a fixture post before it is stored
type PostOption func(*models.Post)

// WithCoordinates places the post at lat/lon
func WithCoordinates(lat, lon float64) PostOption {
	return func(p *models.Post) {
		p.Latitude = &lat
		p.Longitude = &lon
	}
}

// WithLocation sets the free-text location label
func WithLocation(label string) PostOption {
	return func(p *models.Post) { p.LocationText = &label }
}

// WithStatus sets the post status
func WithStatus(status models.PostStatus) PostOption {
	return func(p *models.Post) { p.Status = status }
}

// WithType sets lost or found
func WithType(postType models.PostType) PostOption {
	return func(p *models.Post) { p.Type = postType }
}

// WithCategory sets the category
func WithCategory(category models.Category) PostOption {
	return func(p *models.Post) { p.Category = category }
}

// WithDescription sets the description
func WithDescription(description string) PostOption {
	return func(p *models.Post) { p.Description = description }
}

// CreatedAt pins the creation time
func CreatedAt(ts time.Time) PostOption {
	return func(p *models.Post) { p.CreatedAt = ts.UTC() }
}

// CreatePost inserts an active "lost / other" post owned by owner
func CreatePost(t *testing.T, db *gorm.DB, owner models.User, title string, opts ...PostOption) models.Post {
	t.Helper()
	return CreatePostWithImages(t, db, owner, title, nil, opts...)
}

// CreatePostWithImages inserts a post and its images
func CreatePostWithImages(t *testing.T, db *gorm.DB, owner models.User, title string, images []models.NewPostImage, opts ...PostOption) models.Post {
	t.Helper()
	post := models.Post{
		UserID:      owner.ID,
		Title:       title,
		Description: title,
		Type:        models.PostTypeLost,
		Category:    models.CategoryOther,
		ContactInfo: "+961000000",
		Status:      models.PostStatusActive,
	}
	for _, opt := range opts {
		opt(&post)
	}
	require.NoError(t, repositories.NewPostgresPostRepository(db).CreatePost(context.Background(), &post, images))
	return post
}
