package repositories

import (
	"context"
	"strings"

	"github.com/lostfound/recovery/backend/internal/geo"
	"github.com/lostfound/recovery/backend/internal/models"
	"gorm.io/gorm"
)

// PostOrdering selects the SQL ordering applied by QueryPosts
type PostOrdering int

const (
	// PostOrderNone leaves rows unordered; the caller sorts them
	PostOrderNone PostOrdering = iota
	// PostOrderNewest orders by creation time descending, newest first
	PostOrderNewest
)

// PostCriteria is a conjunction of post predicates. Zero-valued fields are ignored.
type PostCriteria struct {
	Status   models.PostStatus
	Text     string // case-insensitive substring of title or description
	Type     models.PostType
	Category models.Category
	Location string   // case-insensitive substring of location_text
	Window   *geo.Box // coordinates must be set and inside the window
	Order    PostOrdering
	Limit    int // 0 means no limit
	Offset   int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post, images []models.NewPostImage) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	QueryPosts(ctx context.Context, criteria PostCriteria) ([]models.Post, error)
	GetImagesForPosts(ctx context.Context, postIDs []uint) (map[uint][]models.PostImage, error)
	GetCompactPosts(ctx context.Context, ids []uint) (map[uint]models.PostCompact, error)
	DeletePost(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost stores a post and its images in one transaction. Images are
// indexed in the order given.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post, images []models.NewPostImage) error {
	if post.Status == "" {
		post.Status = models.PostStatusActive
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		rows := make([]models.PostImage, len(images))
		for i, img := range images {
			rows[i] = models.PostImage{
				PostID:     post.ID,
				ImageURL:   img.ImageURL,
				AltText:    img.AltText,
				OrderIndex: i,
			}
		}
		return tx.Create(&rows).Error
	})
}

// GetPostByID retrieves a post by ID
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// QueryPosts returns the posts matching every predicate in criteria
func (r *PostgresPostRepository) QueryPosts(ctx context.Context, criteria PostCriteria) ([]models.Post, error) {
	tx := r.db.WithContext(ctx).Model(&models.Post{})

	if criteria.Status != "" {
		tx = tx.Where("status = ?", criteria.Status)
	}
	if criteria.Text != "" {
		pattern := likePattern(criteria.Text)
		tx = tx.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if criteria.Type != "" {
		tx = tx.Where("type = ?", criteria.Type)
	}
	if criteria.Category != "" {
		tx = tx.Where("category = ?", criteria.Category)
	}
	if criteria.Location != "" {
		tx = tx.Where(`LOWER(location_text) LIKE ? ESCAPE '\'`, likePattern(criteria.Location))
	}
	if w := criteria.Window; w != nil {
		tx = tx.Where("latitude IS NOT NULL AND longitude IS NOT NULL").
			Where("latitude BETWEEN ? AND ?", w.MinLat, w.MaxLat)
		if w.HasLongitude {
			tx = tx.Where("longitude BETWEEN ? AND ?", w.MinLon, w.MaxLon)
		}
	}

	if criteria.Order == PostOrderNewest {
		tx = tx.Order("created_at DESC").Order("id DESC")
	}
	if criteria.Limit > 0 {
		tx = tx.Limit(criteria.Limit)
	}
	if criteria.Offset > 0 {
		tx = tx.Offset(criteria.Offset)
	}

	var posts []models.Post
	if err := tx.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetImagesForPosts loads the images of several posts grouped by post ID,
// each group sorted by order index
func (r *PostgresPostRepository) GetImagesForPosts(ctx context.Context, postIDs []uint) (map[uint][]models.PostImage, error) {
	grouped := make(map[uint][]models.PostImage, len(postIDs))
	if len(postIDs) == 0 {
		return grouped, nil
	}

	var images []models.PostImage
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("order_index ASC").Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		grouped[img.PostID] = append(grouped[img.PostID], img)
	}
	return grouped, nil
}

// GetCompactPosts loads the id/title/type projection of several posts
func (r *PostgresPostRepository) GetCompactPosts(ctx context.Context, ids []uint) (map[uint]models.PostCompact, error) {
	compact := make(map[uint]models.PostCompact, len(ids))
	if len(ids) == 0 {
		return compact, nil
	}

	var posts []models.Post
	if err := r.db.WithContext(ctx).Select("id", "title", "type").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	for i := range posts {
		compact[posts[i].ID] = posts[i].ToCompact()
	}
	return compact, nil
}

// DeletePost deletes a post; its images go with it
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased substring pattern with LIKE wildcards escaped
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
