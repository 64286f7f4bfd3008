package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultPendingLimit = 50

// NotificationHandler exposes the caller's pending new-message events so
// clients without push can poll for them
type NotificationHandler struct {
	notificationRepository repositories.MessageNotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.MessageNotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetPending)
	g.PUT("/notifications/:id/delivered", h.MarkDelivered)
}

// GetPending returns undelivered events for the user, oldest first
func (h *NotificationHandler) GetPending(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	if limit < 1 || limit > 200 {
		limit = defaultPendingLimit
	}

	notifications, err := h.notificationRepository.GetUndelivered(c.Request().Context(), currentUserID, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load notifications").SetInternal(err)
	}
	if notifications == nil {
		notifications = []models.MessageNotification{}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"notifications": notifications}})
}

// MarkDelivered acknowledges one of the user's events
func (h *NotificationHandler) MarkDelivered(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationRepository.MarkDelivered(c.Request().Context(), id, currentUserID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notification").SetInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}
