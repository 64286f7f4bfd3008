// Package services holds the post search engine and the conversation and
// messaging engine that sit between the HTTP handlers and the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lostfound/recovery/backend/internal/geo"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"gorm.io/gorm"
)

// DefaultSearchLimit is the page size used when a search does not set one
const DefaultSearchLimit = 20

// Ordering is the rule used to rank search results
type Ordering int

const (
	// OrderNewest ranks by creation time, newest first
	OrderNewest Ordering = iota
	// OrderDistance ranks by distance from the search center, closest first
	OrderDistance
)

// SearchPlan is the executable form of SearchFilters: a predicate conjunction,
// an ordering rule and a page window
type SearchPlan struct {
	Criteria repositories.PostCriteria
	Ordering Ordering
	Center   geo.Point
	RadiusKm float64
	Limit    int
	Offset   int
}

// BuildSearchPlan maps filters to a plan. Only active posts are eligible.
// The geo filter needs latitude, longitude and radius together; supplying only
// part of it is rejected.
func BuildSearchPlan(f models.SearchFilters) (SearchPlan, error) {
	plan := SearchPlan{
		Criteria: repositories.PostCriteria{
			Status:   models.PostStatusActive,
			Text:     f.Query,
			Type:     f.Type,
			Category: f.Category,
			Location: f.Location,
		},
		Ordering: OrderNewest,
		Limit:    f.Limit,
		Offset:   f.Offset,
	}

	if f.Type != "" && !f.Type.Valid() {
		return SearchPlan{}, invalid("type", fmt.Sprintf("unknown post type %q", f.Type))
	}
	if f.Category != "" && !f.Category.Valid() {
		return SearchPlan{}, invalid("category", fmt.Sprintf("unknown category %q", f.Category))
	}
	if f.Limit < 0 {
		return SearchPlan{}, invalid("limit", "must not be negative")
	}
	if f.Offset < 0 {
		return SearchPlan{}, invalid("offset", "must not be negative")
	}
	if plan.Limit == 0 {
		plan.Limit = DefaultSearchLimit
	}

	supplied := 0
	for _, v := range []*float64{f.Latitude, f.Longitude, f.RadiusKm} {
		if v != nil {
			supplied++
		}
	}
	switch supplied {
	case 0:
		return plan, nil
	case 3:
	default:
		return SearchPlan{}, invalid("geo filter", "latitude, longitude and radius_km must be supplied together")
	}

	center := geo.Point{Latitude: *f.Latitude, Longitude: *f.Longitude}
	if err := validateGeo(center, *f.RadiusKm); err != nil {
		return SearchPlan{}, err
	}

	box := geo.BoundingBox(center, *f.RadiusKm)
	plan.Criteria.Window = &box
	plan.Ordering = OrderDistance
	plan.Center = center
	plan.RadiusKm = *f.RadiusKm
	return plan, nil
}

func validateGeo(center geo.Point, radiusKm float64) error {
	if !center.Valid() {
		return invalid("coordinates", "latitude must be within [-90, 90] and longitude within [-180, 180]")
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return invalid("radius_km", "must be a positive number of kilometers")
	}
	return nil
}

// SearchService runs post searches and nearby lookups
type SearchService struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewSearchService creates a new SearchService
func NewSearchService(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *SearchService {
	return &SearchService{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// Search returns active posts matching every supplied filter. Without a geo
// filter results are newest first; with one they are closest first. The page
// window is applied after ordering either way.
func (s *SearchService) Search(ctx context.Context, filters models.SearchFilters) ([]models.PostResult, error) {
	plan, err := BuildSearchPlan(filters)
	if err != nil {
		return nil, err
	}

	if plan.Ordering == OrderNewest {
		criteria := plan.Criteria
		criteria.Order = repositories.PostOrderNewest
		criteria.Limit = plan.Limit
		criteria.Offset = plan.Offset

		posts, err := s.postRepository.QueryPosts(ctx, criteria)
		if err != nil {
			return nil, fmt.Errorf("search posts: %w", err)
		}
		return s.hydrate(ctx, posts, nil)
	}

	candidates, err := s.postRepository.QueryPosts(ctx, plan.Criteria)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	ranked := rankByDistance(candidates, plan.Center, plan.RadiusKm)
	ranked = paginate(ranked, plan.Limit, plan.Offset)
	return s.hydrateRanked(ctx, ranked)
}

// Nearby returns active posts with coordinates within radiusKm of center,
// closest first. A positive limit caps the result count.
func (s *SearchService) Nearby(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]models.PostResult, error) {
	if err := validateGeo(center, radiusKm); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, invalid("limit", "must not be negative")
	}

	box := geo.BoundingBox(center, radiusKm)
	candidates, err := s.postRepository.QueryPosts(ctx, repositories.PostCriteria{
		Status: models.PostStatusActive,
		Window: &box,
	})
	if err != nil {
		return nil, fmt.Errorf("nearby posts: %w", err)
	}

	ranked := rankByDistance(candidates, center, radiusKm)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return s.hydrateRanked(ctx, ranked)
}

// GetPost returns one post hydrated like a search result, whatever its status
func (s *SearchService) GetPost(ctx context.Context, id uint) (*models.PostResult, error) {
	post, err := s.postRepository.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("post", id)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	results, err := s.hydrate(ctx, []models.Post{*post}, nil)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

type rankedPost struct {
	post       models.Post
	distanceKm float64
}

// rankByDistance keeps posts with both coordinates inside the radius and sorts
// them closest first; equal distances fall back to newest first
func rankByDistance(posts []models.Post, center geo.Point, radiusKm float64) []rankedPost {
	ranked := make([]rankedPost, 0, len(posts))
	for _, p := range posts {
		if !p.HasCoordinates() {
			continue
		}
		d := geo.DistanceKm(center.Latitude, center.Longitude, *p.Latitude, *p.Longitude)
		if d > radiusKm {
			continue
		}
		ranked = append(ranked, rankedPost{post: p, distanceKm: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.distanceKm != b.distanceKm {
			return a.distanceKm < b.distanceKm
		}
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.post.ID > b.post.ID
	})
	return ranked
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (s *SearchService) hydrateRanked(ctx context.Context, ranked []rankedPost) ([]models.PostResult, error) {
	posts := make([]models.Post, len(ranked))
	distances := make([]float64, len(ranked))
	for i, r := range ranked {
		posts[i] = r.post
		distances[i] = r.distanceKm
	}
	return s.hydrate(ctx, posts, distances)
}

// hydrate attaches images and the author projection. distances, when non-nil,
// is parallel to posts.
func (s *SearchService) hydrate(ctx context.Context, posts []models.Post, distances []float64) ([]models.PostResult, error) {
	results := make([]models.PostResult, len(posts))
	if len(posts) == 0 {
		return results, nil
	}

	postIDs := make([]uint, len(posts))
	authorSet := make(map[uint]struct{}, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		if _, seen := authorSet[p.UserID]; !seen {
			authorSet[p.UserID] = struct{}{}
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	images, err := s.postRepository.GetImagesForPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load post images: %w", err)
	}
	authors, err := s.userRepository.GetCompactUsers(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load post authors: %w", err)
	}

	for i, p := range posts {
		postImages := images[p.ID]
		if postImages == nil {
			postImages = []models.PostImage{}
		}
		results[i] = models.PostResult{
			Post:   p,
			Images: postImages,
			User:   authors[p.UserID],
		}
		if distances != nil {
			d := distances[i]
			results[i].DistanceKm = &d
		}
	}
	return results, nil
}
