package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the identity record owned by the auth service. This backend only
// reads it to check existence and to hydrate author/participant projections.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Email             string    `json:"email" gorm:"uniqueIndex;not null"`
	FirstName         string    `json:"first_name" gorm:"not null"`
	LastName          string    `json:"last_name" gorm:"not null"`
	Phone             *string   `json:"phone,omitempty"`
	PreferredLanguage string    `json:"preferred_language" gorm:"type:varchar(2);not null;default:'en'"`
	FirebaseUID       *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UserCompact is the public projection attached to posts and conversations.
// It never carries email, phone or credentials.
type UserCompact struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ToCompact converts a user to its public projection
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// JwtCustomClaims are the claims issued by the auth service
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
