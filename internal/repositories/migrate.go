package repositories

import (
	"github.com/lostfound/recovery/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table this service owns or reads
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostImage{},
		&models.Conversation{},
		&models.Message{},
	)
}
