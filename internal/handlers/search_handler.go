package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lostfound/recovery/backend/internal/geo"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/services"
)

// SearchHandler serves post search, nearby lookups and single posts
type SearchHandler struct {
	searchService *services.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// RegisterSearchRoutes registers post read routes
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/posts/search", h.SearchPosts)
	g.GET("/posts/nearby", h.NearbyPosts)
	g.GET("/posts/:id", h.GetPost)
}

// SearchPosts filters active posts by text, type, category, location label
// and an optional radius
func (h *SearchHandler) SearchPosts(c echo.Context) error {
	filters := models.SearchFilters{
		Query:    c.QueryParam("query"),
		Type:     models.PostType(c.QueryParam("type")),
		Category: models.Category(c.QueryParam("category")),
		Location: c.QueryParam("location"),
	}

	var err error
	if filters.Latitude, err = queryFloat(c, "latitude"); err != nil {
		return err
	}
	if filters.Longitude, err = queryFloat(c, "longitude"); err != nil {
		return err
	}
	if filters.RadiusKm, err = queryFloat(c, "radius_km"); err != nil {
		return err
	}
	if filters.Limit, err = queryInt(c, "limit"); err != nil {
		return err
	}
	if filters.Offset, err = queryInt(c, "offset"); err != nil {
		return err
	}

	if err := c.Validate(&filters); err != nil {
		return err
	}

	results, err := h.searchService.Search(c.Request().Context(), filters)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": results},
		"meta": echo.Map{
			"limit":  limitOrDefault(filters.Limit, services.DefaultSearchLimit),
			"offset": filters.Offset,
			"count":  len(results),
		},
	})
}

// NearbyPosts lists active posts within radius_km of a point, closest first
func (h *SearchHandler) NearbyPosts(c echo.Context) error {
	lat, err := queryFloat(c, "latitude")
	if err != nil {
		return err
	}
	lon, err := queryFloat(c, "longitude")
	if err != nil {
		return err
	}
	radius, err := queryFloat(c, "radius_km")
	if err != nil {
		return err
	}
	if lat == nil || lon == nil || radius == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "latitude, longitude and radius_km are required")
	}

	req := models.NearbyRequest{Latitude: *lat, Longitude: *lon, RadiusKm: *radius}
	if req.Limit, err = queryInt(c, "limit"); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	center := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	results, err := h.searchService.Nearby(c.Request().Context(), center, req.RadiusKm, req.Limit)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"posts": results}})
}

// GetPost returns one post with its images and author
func (h *SearchHandler) GetPost(c echo.Context) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	post, err := h.searchService.GetPost(c.Request().Context(), postID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"post": post}})
}

func limitOrDefault(limit, def int) int {
	if limit == 0 {
		return def
	}
	return limit
}
