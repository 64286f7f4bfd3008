package models

import (
	"time"
)

// PostType tells whether an item was lost or found
type PostType string

const (
	PostTypeLost  PostType = "lost"
	PostTypeFound PostType = "found"
)

// Category is the closed set of item categories
type Category string

const (
	CategoryPerson      Category = "person"
	CategoryCar         Category = "car"
	CategoryFurniture   Category = "furniture"
	CategoryElectronics Category = "electronics"
	CategoryDocuments   Category = "documents"
	CategoryJewelry     Category = "jewelry"
	CategoryClothing    Category = "clothing"
	CategoryOther       Category = "other"
)

// Categories lists every valid category in display order
var Categories = []Category{
	CategoryPerson,
	CategoryCar,
	CategoryFurniture,
	CategoryElectronics,
	CategoryDocuments,
	CategoryJewelry,
	CategoryClothing,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Valid reports whether t is lost or found
func (t PostType) Valid() bool {
	return t == PostTypeLost || t == PostTypeFound
}

// PostStatus is the lifecycle state of a post. Only active posts are searchable.
type PostStatus string

const (
	PostStatusActive   PostStatus = "active"
	PostStatusResolved PostStatus = "resolved"
	PostStatusClosed   PostStatus = "closed"
)

// Post is a lost or found report (PostgreSQL)
type Post struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"not null;index"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description" gorm:"type:text;not null"`
	Type         PostType   `json:"type" gorm:"type:varchar(10);not null;index"`
	Category     Category   `json:"category" gorm:"type:varchar(20);not null;index"`
	LocationText *string    `json:"location_text"`
	Latitude     *float64   `json:"latitude" gorm:"type:double precision"`
	Longitude    *float64   `json:"longitude" gorm:"type:double precision"`
	ContactInfo  string     `json:"contact_info" gorm:"not null"`
	Status       PostStatus `json:"status" gorm:"type:varchar(10);not null;default:'active';index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Author *User `json:"-" gorm:"foreignKey:UserID"`
}

// HasCoordinates is true only when both latitude and longitude are set
func (p *Post) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// PostImage is an image attached to a post. Images are listed by OrderIndex,
// ties broken by ID.
type PostImage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PostID     uint      `json:"post_id" gorm:"not null;index"`
	ImageURL   string    `json:"image_url" gorm:"not null"`
	AltText    *string   `json:"alt_text"`
	OrderIndex int       `json:"order_index" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`

	PostRef *Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// PostCompact is the post projection shown in conversation lists
type PostCompact struct {
	ID    uint     `json:"id"`
	Title string   `json:"title"`
	Type  PostType `json:"type"`
}

// ToCompact converts a post to its conversation-list projection
func (p *Post) ToCompact() PostCompact {
	return PostCompact{ID: p.ID, Title: p.Title, Type: p.Type}
}

// PostResult is a post hydrated for search and nearby responses
type PostResult struct {
	Post
	Images     []PostImage `json:"images"`
	User       UserCompact `json:"user"`
	DistanceKm *float64    `json:"distance_km,omitempty"`
}

// NewPostImage describes an image supplied when a post is created
type NewPostImage struct {
	ImageURL string  `json:"image_url" validate:"required,url"`
	AltText  *string `json:"alt_text,omitempty"`
}
