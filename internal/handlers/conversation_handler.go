package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lostfound/recovery/backend/internal/models"
	"github.com/lostfound/recovery/backend/internal/services"
)

// ConversationHandler handles conversation and message HTTP requests. The
// authenticated user is always one side of the conversation.
type ConversationHandler struct {
	conversationService *services.ConversationService
	messageService      *services.MessageService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(conversationService *services.ConversationService, messageService *services.MessageService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		messageService:      messageService,
	}
}

// RegisterConversationRoutes registers conversation routes
func (h *ConversationHandler) RegisterConversationRoutes(g *echo.Group) {
	g.POST("/conversations", h.StartConversation)
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/unread-count", h.GetUnreadCount)
	g.GET("/conversations/:id/messages", h.GetMessages)
	g.POST("/conversations/:id/messages", h.SendMessage)
	g.PUT("/conversations/:id/read", h.MarkAsRead)
}

// StartConversation opens the conversation about a post with another user,
// or returns the existing one
func (h *ConversationHandler) StartConversation(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	conversation, err := h.conversationService.GetOrCreate(c.Request().Context(), req.PostID, currentUserID, req.OtherUserID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"conversation": conversation}})
}

// ListConversations returns the user's conversations, most recently active first
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	summaries, err := h.messageService.ListConversations(c.Request().Context(), currentUserID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"conversations": summaries}})
}

// GetUnreadCount returns how many messages addressed to the user are unread
func (h *ConversationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.messageService.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// GetMessages returns a page of the thread newest first and marks the
// messages addressed to the user as read
func (h *ConversationHandler) GetMessages(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	messages, err := h.messageService.ListAndMarkRead(c.Request().Context(), conversationID, currentUserID, limit, offset)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"messages": messages},
		"meta": echo.Map{
			"limit":  limitOrDefault(limit, services.DefaultMessagePageSize),
			"offset": offset,
			"count":  len(messages),
		},
	})
}

// SendMessage appends a message from the user to the conversation
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	message, err := h.messageService.Append(c.Request().Context(), conversationID, currentUserID, req.Content)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"message": message}})
}

// MarkAsRead marks every message addressed to the user in the conversation as read
func (h *ConversationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.messageService.MarkRead(c.Request().Context(), conversationID, currentUserID); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}
