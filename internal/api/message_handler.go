package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/service"
)

// MessageHandler handles message endpoints for channels and conversations.
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage handles POST /api/v1/channels/:id/messages.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	userID := auth.GetUserID(c)

	msg, err := h.service.SendChannelMessage(c.Request().Context(), channelID, userID, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, msg)
}

// GetMessages handles GET /api/v1/channels/:id/messages.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	before, _ := strconv.ParseInt(c.QueryParam("before"), 10, 64)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	userID := auth.GetUserID(c)

	messages, err := h.service.GetChannelMessages(c.Request().Context(), channelID, userID, before, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, messages)
}

// EditMessage handles PATCH /api/v1/messages/:id.
func (h *MessageHandler) EditMessage(c echo.Context) error {
	msgID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message id")
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	userID := auth.GetUserID(c)

	msg, err := h.service.EditMessage(c.Request().Context(), msgID, userID, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, msg)
}

// DeleteMessage handles DELETE /api/v1/messages/:id.
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	msgID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message id")
	}

	userID := auth.GetUserID(c)

	if err := h.service.DeleteMessage(c.Request().Context(), msgID, userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type sendDirectMessageRequest struct {
	RecipientID int64  `json:"recipient_id,string"`
	Content     string `json:"content"`
}

// SendDirectMessage handles POST /api/v1/users/@me/conversations.
func (h *MessageHandler) SendDirectMessage(c echo.Context) error {
	var req sendDirectMessageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	userID := auth.GetUserID(c)

	msg, err := h.service.SendDirectMessage(c.Request().Context(), userID, req.RecipientID, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, msg)
}

// ListConversations handles GET /api/v1/users/@me/conversations.
func (h *MessageHandler) ListConversations(c echo.Context) error {
	userID := auth.GetUserID(c)

	convs, err := h.service.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, convs)
}

// GetConversationMessages handles GET /api/v1/conversations/:id/messages.
func (h *MessageHandler) GetConversationMessages(c echo.Context) error {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation id")
	}

	before, _ := strconv.ParseInt(c.QueryParam("before"), 10, 64)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	userID := auth.GetUserID(c)

	messages, err := h.service.GetConversationMessages(c.Request().Context(), conversationID, userID, before, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, messages)
}
